package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// RenderCommand substitutes parameter placeholders into the plan's command
// template and returns the concrete argv to execute. Overrides take
// precedence over the plan's declared defaults. A placeholder is "{name}"
// where name is alphanumeric plus hyphen and underscore; anything else
// between braces passes through verbatim so shell snippets keep working.
func RenderCommand(plan *Plan, overrides map[string]string) ([]string, error) {
	if len(plan.Command) == 0 {
		return nil, zerr.With(ErrMissingCommand, "plan", plan.Name.String())
	}

	params := mergeParameters(plan, overrides)
	argv := make([]string, len(plan.Command))
	for i, word := range plan.Command {
		rendered, err := renderWord(word, params)
		if err != nil {
			return nil, zerr.With(err, "plan", plan.Name.String())
		}
		argv[i] = rendered
	}
	return argv, nil
}

// RenderPaths substitutes parameter placeholders into the given input or
// output path templates of the plan, with the same placeholder rules as
// RenderCommand.
func RenderPaths(plan *Plan, templates []string, overrides map[string]string) ([]string, error) {
	params := mergeParameters(plan, overrides)
	paths := make([]string, len(templates))
	for i, tmpl := range templates {
		rendered, err := renderWord(tmpl, params)
		if err != nil {
			return nil, zerr.With(err, "plan", plan.Name.String())
		}
		paths[i] = rendered
	}
	return paths, nil
}

func mergeParameters(plan *Plan, overrides map[string]string) map[string]string {
	params := make(map[string]string, len(plan.Parameters)+len(overrides))
	for k, v := range plan.Parameters {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}
	return params
}

func renderWord(word string, params map[string]string) (string, error) {
	if !strings.ContainsRune(word, '{') {
		return word, nil
	}

	var b strings.Builder
	for i := 0; i < len(word); {
		if word[i] != '{' {
			b.WriteByte(word[i])
			i++
			continue
		}

		end := strings.IndexByte(word[i:], '}')
		if end < 0 {
			b.WriteString(word[i:])
			break
		}

		name := word[i+1 : i+end]
		if !isParameterName(name) {
			b.WriteString(word[i : i+end+1])
			i += end + 1
			continue
		}

		value, ok := params[name]
		if !ok {
			return "", zerr.With(ErrUnboundParameter, "parameter", name)
		}
		b.WriteString(value)
		i += end + 1
	}
	return b.String(), nil
}

func isParameterName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
