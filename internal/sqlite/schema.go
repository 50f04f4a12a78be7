package sqlite

import (
	"database/sql"
	"fmt"
)

// Table names. Each table is mirrored by <name>.jsonl in DataDir.
const (
	tablePosts         = "posts"
	tablePostMeta      = "postmeta"
	tableTerms         = "terms"
	tableRelationships = "term_relationships"
	tablePostTypes     = "post_types"
	tableUsers         = "users"
	tableUserRoles     = "user_roles"
)

// Schema DDL for all tables.
const (
	createPosts = `CREATE TABLE posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_type TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    guid TEXT NOT NULL,
    author_id INTEGER NOT NULL DEFAULT 0,
    post_date TEXT NOT NULL,
    post_modified TEXT NOT NULL
);`

	createPostMeta = `CREATE TABLE postmeta (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL
);`

	createTerms = `CREATE TABLE terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    parent_id INTEGER NOT NULL DEFAULT 0
);`

	createRelationships = `CREATE TABLE term_relationships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    object_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    term_order INTEGER NOT NULL DEFAULT 0
);`

	createPostTypes = `CREATE TABLE post_types (
    slug TEXT PRIMARY KEY,
    one TEXT NOT NULL,
    many TEXT NOT NULL,
    supports TEXT NOT NULL DEFAULT '[]',
    public INTEGER NOT NULL DEFAULT 0
);`

	createUsers = `CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    login TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    registered TEXT NOT NULL
);`

	createUserRoles = `CREATE TABLE user_roles (
    user_id INTEGER NOT NULL,
    role TEXT NOT NULL,
    PRIMARY KEY (user_id, role)
);`
)

// Index DDL for common queries.
const (
	idxPostsType         = `CREATE INDEX idx_posts_type_date ON posts(post_type, post_date);`
	idxPostMetaUnique    = `CREATE UNIQUE INDEX idx_postmeta_unique ON postmeta(post_id, meta_key);`
	idxTermsSlug         = `CREATE UNIQUE INDEX idx_terms_taxonomy_slug ON terms(taxonomy, slug);`
	idxRelationshipsPair = `CREATE UNIQUE INDEX idx_relationships_pair ON term_relationships(object_id, term_id);`
	idxRelationshipsTerm = `CREATE INDEX idx_relationships_term ON term_relationships(term_id);`
	idxUserRolesRole     = `CREATE INDEX idx_user_roles_role ON user_roles(role);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createPosts,
	createPostMeta,
	createTerms,
	createRelationships,
	createPostTypes,
	createUsers,
	createUserRoles,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPostsType,
	idxPostMetaUnique,
	idxTermsSlug,
	idxRelationshipsPair,
	idxRelationshipsTerm,
	idxUserRolesRole,
}

func createSchema(db *sql.DB) error {
	for _, stmt := range append(append([]string(nil), schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
