package database

// Schema is the full current schema as a single script, kept in sync with the
// migration files. Tests apply it directly to in-memory databases instead of
// running the migration machinery.
const Schema = `
CREATE TABLE articles (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    title     TEXT NOT NULL,
    author    TEXT NOT NULL,
    date      TEXT NOT NULL,
    content   TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX idx_articles_timestamp ON articles(timestamp);

CREATE TABLE roles (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    is_default  BOOLEAN NOT NULL DEFAULT 0,
    permissions INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_roles_is_default ON roles(is_default);

CREATE TABLE users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role_id       INTEGER REFERENCES roles(id)
);

CREATE TABLE feedback (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    body      TEXT NOT NULL,
    author    TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX idx_feedback_timestamp ON feedback(timestamp);
`
