package querylens

// Feature represents engine-specific capability flags consulted by the
// metadata and DDL layers.
type Feature int

const (
	FeatureSchemas           Feature = iota + 1 // real schema namespaces
	FeatureDDL                                  // CREATE/ALTER/DROP TABLE grammar
	FeatureDropCascade                          // DROP TABLE ... CASCADE
	FeatureOutOfLineComments                    // COMMENT ON statements
	FeatureAlterColumnType                      // ALTER COLUMN ... TYPE
	FeatureAlterNotNull                         // toggling NOT NULL on existing columns
	FeatureAlterDefault                         // SET/DROP DEFAULT on existing columns
	FeatureRenameColumn                         // renaming a column in place
)

// Capabilities defines which features are supported by each dialect.
var Capabilities = map[Dialect]map[Feature]bool{
	DialectPostgres: {
		FeatureSchemas:           true,
		FeatureDDL:               true,
		FeatureDropCascade:       true,
		FeatureOutOfLineComments: true,
		FeatureAlterColumnType:   true,
		FeatureAlterNotNull:      true,
		FeatureAlterDefault:      true,
		FeatureRenameColumn:      true,
	},
	DialectMySQL: {
		FeatureSchemas:           false,
		FeatureDDL:               true,
		FeatureDropCascade:       false,
		FeatureOutOfLineComments: false,
		FeatureAlterColumnType:   true,
		FeatureAlterNotNull:      true,
		FeatureAlterDefault:      true,
		FeatureRenameColumn:      true,
	},
	DialectSQLite: {
		FeatureSchemas:           false,
		FeatureDDL:               true,
		FeatureDropCascade:       false,
		FeatureOutOfLineComments: false,
		FeatureAlterColumnType:   false,
		FeatureAlterNotNull:      false,
		FeatureAlterDefault:      false,
		FeatureRenameColumn:      true,
	},
	DialectSQLServer: {
		FeatureSchemas:           true,
		FeatureDDL:               true,
		FeatureDropCascade:       false,
		FeatureOutOfLineComments: false,
		FeatureAlterColumnType:   true,
		FeatureAlterNotNull:      true,
		FeatureAlterDefault:      true,
		FeatureRenameColumn:      true,
	},
	DialectMongoDB: {
		FeatureSchemas: false,
		FeatureDDL:     false,
	},
}

// HasFeature reports whether a dialect supports a feature.
func HasFeature(d Dialect, f Feature) bool {
	return Capabilities[d][f]
}
