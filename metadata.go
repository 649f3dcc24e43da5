package querylens

// Metadata value objects returned by driver introspection calls. They are
// read-only snapshots of the engine catalog at the time of the call; this
// layer never caches them. JSON field names use camelCase because these
// objects cross the process boundary verbatim.

// DatabaseInfo describes one database visible on a connection.
type DatabaseInfo struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`   // engines without owners leave this empty
	Charset string `json:"charset,omitempty"` // MySQL default charset
}

// SchemaInfo describes one schema namespace. Engines without a schema layer
// report a fixed placeholder: "main" for SQLite, the connected database for
// MySQL, "public" for MongoDB.
type SchemaInfo struct {
	Name  string `json:"name"`
	Owner string `json:"owner,omitempty"`
}

// TableInfo describes one table-like object.
type TableInfo struct {
	Name     string `json:"name"`
	Schema   string `json:"schema"`
	Type     string `json:"type"` // BASE TABLE, VIEW, or COLLECTION
	RowCount int64  `json:"rowCount"`
	Comment  string `json:"comment,omitempty"`
}

// ColumnInfo describes one column in catalog ordinal order.
type ColumnInfo struct {
	Name            string  `json:"name"`
	DataType        string  `json:"dataType"` // engine-native type name
	Nullable        bool    `json:"nullable"`
	DefaultValue    *string `json:"defaultValue"`
	IsPrimaryKey    bool    `json:"isPrimaryKey"`
	Comment         string  `json:"comment,omitempty"`
	OrdinalPosition int     `json:"ordinalPosition"`
}

// IndexInfo describes one index on a table.
type IndexInfo struct {
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	IsUnique  bool     `json:"isUnique"`
	IsPrimary bool     `json:"isPrimary"`
	Type      string   `json:"type,omitempty"` // btree, hash, gin, ...
}

// TableSchema is the full description of one table as returned by
// Driver.GetTableSchema. Columns preserve the catalog's ordinal order.
type TableSchema struct {
	Schema  string       `json:"schema"`
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
	Indexes []IndexInfo  `json:"indexes"`
	Comment string       `json:"comment,omitempty"`
}
