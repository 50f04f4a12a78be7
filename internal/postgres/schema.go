package postgres

// Schema creates every table and index. All statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS posts (
    id BIGSERIAL PRIMARY KEY,
    post_type TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    guid TEXT NOT NULL,
    author_id BIGINT NOT NULL DEFAULT 0,
    post_date TIMESTAMPTZ NOT NULL,
    post_modified TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_type_date ON posts(post_type, post_date);

CREATE TABLE IF NOT EXISTS postmeta (
    id BIGSERIAL PRIMARY KEY,
    post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    UNIQUE (post_id, meta_key)
);

CREATE TABLE IF NOT EXISTS terms (
    id BIGSERIAL PRIMARY KEY,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    parent_id BIGINT NOT NULL DEFAULT 0,
    UNIQUE (taxonomy, slug)
);

CREATE TABLE IF NOT EXISTS term_relationships (
    id BIGSERIAL PRIMARY KEY,
    object_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    term_id BIGINT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
    term_order INTEGER NOT NULL DEFAULT 0,
    UNIQUE (object_id, term_id)
);
CREATE INDEX IF NOT EXISTS idx_relationships_term ON term_relationships(term_id);

CREATE TABLE IF NOT EXISTS post_types (
    slug TEXT PRIMARY KEY,
    one TEXT NOT NULL,
    many TEXT NOT NULL,
    supports JSONB NOT NULL DEFAULT '[]',
    public BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    login TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    registered TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    position SERIAL,
    PRIMARY KEY (user_id, role)
);
CREATE INDEX IF NOT EXISTS idx_user_roles_role ON user_roles(role);
`
