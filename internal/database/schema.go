package database

import "context"

// KVTable holds the durable client state, one row per namespaced key.
const KVTable = "storefront_kv"

const kvSchemaSQL = `CREATE TABLE IF NOT EXISTS storefront_kv (
    namespace VARCHAR(64) NOT NULL,
    k VARCHAR(191) NOT NULL,
    v MEDIUMTEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    PRIMARY KEY (namespace, k)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// SetupSchema creates the key-value table
func (db *DB) SetupSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, kvSchemaSQL)
	return err
}

// ClearNamespace removes every key stored under namespace (but keeps schema)
func (db *DB) ClearNamespace(ctx context.Context, namespace string) error {
	_, err := db.ExecContext(ctx, "DELETE FROM storefront_kv WHERE namespace = ?", namespace)
	return err
}

// DropSchema removes the key-value table
func (db *DB) DropSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS storefront_kv")
	return err
}
