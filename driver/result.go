package driver

// QueryResult is the uniform outcome of ExecuteQuery. Exactly one of the two
// shapes holds for a single statement: either RowsAffected is set (command
// path) or Columns/Rows are populated (query path). The empty result carries
// neither; it is returned for multi-statement batches, where no per-statement
// affected count is recoverable.
type QueryResult struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected *int64   `json:"rowsAffected"`
}

// NewDataResult builds the query-path shape.
func NewDataResult(columns []string, rows [][]any) *QueryResult {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return &QueryResult{Columns: columns, Rows: rows}
}

// NewAffectedResult builds the command-path shape.
func NewAffectedResult(n int64) *QueryResult {
	return &QueryResult{Columns: []string{}, Rows: [][]any{}, RowsAffected: &n}
}

// NewEmptyResult builds the batch outcome: no columns, no rows, no count.
func NewEmptyResult() *QueryResult {
	return &QueryResult{Columns: []string{}, Rows: [][]any{}}
}

// HasRows reports whether the result carries row data.
func (r *QueryResult) HasRows() bool {
	return r.RowsAffected == nil && len(r.Columns) > 0
}
