package schema

import (
	"encoding/json"

	"github.com/matzehuels/erdlayout/pkg/diagram"
)

// =============================================================================
// SQL generation
// =============================================================================

// SQLRequest asks the service to derive tables and DDL from a diagram.
type SQLRequest struct {
	ProjectID string
	// Diagram is optional; nil means the project's saved diagram.
	Diagram     *diagram.Diagram
	Dialect     string
	Validate    bool
	IncludeDrop bool
}

type sqlWire struct {
	Entities    *diagram.Diagram `json:"entities,omitempty"`
	Dialect     string           `json:"dialect"`
	Validate    bool             `json:"validate"`
	IncludeDrop bool             `json:"include_drop"`
}

func (r SQLRequest) wire() sqlWire {
	return sqlWire{
		Entities:    r.Diagram,
		Dialect:     r.Dialect,
		Validate:    r.Validate,
		IncludeDrop: r.IncludeDrop,
	}
}

// SQLResult is the service's answer to an [SQLRequest].
type SQLResult struct {
	Success    bool              `json:"success"`
	SQL        string            `json:"sql"`
	DSD        *DSD              `json:"dsd"`
	Validation *ValidationReport `json:"validation"`
	Dialect    string            `json:"dialect"`
	Errors     []string          `json:"errors,omitempty"`
}

// DSD is a data structure diagram: the relational schema derived from an
// entity-relationship diagram.
type DSD struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Tables      []Table `json:"tables"`
}

// Table is one relation of a [DSD].
type Table struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Columns     []Column     `json:"columns"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty"`
}

// Column is a table column.
type Column struct {
	Name          string  `json:"name"`
	SQLType       string  `json:"sql_type"`
	Nullable      bool    `json:"nullable"`
	Unique        bool    `json:"unique"`
	AutoIncrement bool    `json:"auto_increment"`
	DefaultValue  *string `json:"default_value,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Constraint is a primary key, foreign key, unique or check constraint.
type Constraint struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table,omitempty"`
	ReferencedColumns []string `json:"referenced_columns,omitempty"`
	OnDelete          string   `json:"on_delete,omitempty"`
	OnUpdate          string   `json:"on_update,omitempty"`
}

// Index is a table index.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// ValidationReport summarizes schema checks run by the service.
type ValidationReport struct {
	Valid    bool              `json:"valid"`
	Issues   []ValidationIssue `json:"issues"`
	Errors   int               `json:"errors"`
	Warnings int               `json:"warnings"`
	Infos    int               `json:"infos"`
	Summary  string            `json:"summary"`
}

// ValidationIssue is one finding of a [ValidationReport].
type ValidationIssue struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// =============================================================================
// Normalization
// =============================================================================

// NormalizeRequest asks the service to normalize the tables derived from a
// diagram.
type NormalizeRequest struct {
	ProjectID    string
	Diagram      *diagram.Diagram
	NormalForm   string
	Dependencies []Dependency
}

type normalizeWire struct {
	NormalForm   string           `json:"normalization_type"`
	Dependencies []Dependency     `json:"functional_dependencies"`
	Entities     *diagram.Diagram `json:"entities,omitempty"`
}

func (r NormalizeRequest) wire() normalizeWire {
	return normalizeWire{
		NormalForm:   r.NormalForm,
		Dependencies: r.Dependencies,
		Entities:     r.Diagram,
	}
}

// NormalizeResult is the service's answer to a [NormalizeRequest].
type NormalizeResult struct {
	Success           bool        `json:"success"`
	Original          *DSD        `json:"original"`
	Normalized        *DSD        `json:"normalized"`
	Changes           []Change    `json:"changes"`
	NormalForm        string      `json:"normalization_type"`
	Violations        []Violation `json:"violations_found"`
	AlreadyNormalized bool        `json:"is_already_normalized"`
}

// Change describes one decomposition step.
type Change struct {
	Type            string   `json:"type"`
	OriginalTable   string   `json:"original_table"`
	NewTables       []string `json:"new_tables"`
	Reason          string   `json:"reason"`
	FDViolated      string   `json:"fd_violated,omitempty"`
	ColumnsAffected []string `json:"columns_affected,omitempty"`
}

// Violation is a functional dependency that breaks the target normal form.
type Violation struct {
	Table       string   `json:"table,omitempty"`
	FD          string   `json:"fd"`
	Determinant []string `json:"determinant"`
	Dependent   []string `json:"dependent"`
}

// =============================================================================
// Errors
// =============================================================================

// serviceError is the error body the service sends with non-2xx responses.
type serviceError struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
	Message string          `json:"message"`
}
