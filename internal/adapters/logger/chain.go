package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// chainLink is one layer of an error chain: the layer's own message plus
// any structured metadata zerr attached to it.
type chainLink struct {
	message string
	fields  map[string]any
}

// selfMessager matches the Message method of zerr.Error, which reports a
// layer's own text without the wrapped chain.
type selfMessager interface {
	Message() string
}

// fielder matches the Metadata method of zerr.Error.
type fielder interface {
	Metadata() map[string]any
}

// splitChain walks err into one link per zerr layer. The first layer that
// is not a zerr error contributes its full Error string and ends the walk,
// so fmt.Errorf chains collapse into a single link.
func splitChain(err error) []chainLink {
	var links []chainLink
	for err != nil {
		m, ok := err.(selfMessager)
		if !ok {
			links = append(links, chainLink{message: err.Error()})
			break
		}
		link := chainLink{message: m.Message()}
		if f, ok := err.(fielder); ok {
			link.fields = f.Metadata()
		}
		links = append(links, link)
		err = errors.Unwrap(err)
	}
	return links
}

// renderChain formats links for the terminal: the first as the headline
// error, the rest beneath a "Caused by:" header, each with its fields as
// sorted key-value lines.
func renderChain(links []chainLink) string {
	var b strings.Builder
	for i, link := range links {
		text := strings.Split(link.message, "\n")
		switch i {
		case 0:
			b.WriteString("Error: " + text[0])
			for _, line := range text[1:] {
				b.WriteString("\n       " + line)
			}
			writeFields(&b, "       ", link.fields)
		case 1:
			b.WriteString("\n\n  Caused by:")
			fallthrough
		default:
			b.WriteString("\n    → " + text[0])
			for _, line := range text[1:] {
				b.WriteString("\n      " + line)
			}
			writeFields(&b, "      ", link.fields)
		}
	}
	return b.String()
}

func writeFields(b *strings.Builder, indent string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		fmt.Fprintf(b, "\n%s%s: %v", indent, key, fields[key])
	}
}
