package provstore

// schema is the complete provenance database layout. Timestamps are Unix
// nanoseconds so ordering and equality survive the round-trip exactly.
//
// History tables are INSERT-only. The only UPDATEs the adapter issues set
// invalidated_at / deleted_at once on a row where they are still NULL;
// plan_heads is derived state (name -> latest version) and may be repointed.
const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	command      TEXT NOT NULL,
	inputs       TEXT NOT NULL,
	outputs      TEXT NOT NULL,
	parameters   TEXT,
	derived_from TEXT REFERENCES plans(id),
	created_at   INTEGER NOT NULL,
	deleted_at   INTEGER
);

CREATE TABLE IF NOT EXISTS plan_heads (
	name    TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL REFERENCES plans(id)
);

CREATE TABLE IF NOT EXISTS activities (
	id             TEXT PRIMARY KEY,
	plan_id        TEXT NOT NULL REFERENCES plans(id),
	started_at     INTEGER NOT NULL,
	ended_at       INTEGER NOT NULL,
	parameters     TEXT,
	invalidated_at INTEGER
);

CREATE TABLE IF NOT EXISTS usages (
	activity_id TEXT NOT NULL REFERENCES activities(id),
	ord         INTEGER NOT NULL,
	path        TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	PRIMARY KEY (activity_id, ord)
);

CREATE TABLE IF NOT EXISTS generations (
	activity_id TEXT NOT NULL REFERENCES activities(id),
	ord         INTEGER NOT NULL,
	path        TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	PRIMARY KEY (activity_id, ord),
	UNIQUE (activity_id, path)
);

CREATE INDEX IF NOT EXISTS idx_plans_name ON plans(name);
CREATE INDEX IF NOT EXISTS idx_activities_ended ON activities(ended_at);
CREATE INDEX IF NOT EXISTS idx_activities_plan ON activities(plan_id);
CREATE INDEX IF NOT EXISTS idx_generations_path ON generations(path);
`
