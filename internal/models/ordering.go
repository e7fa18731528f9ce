package models

// OrderedBlock is a row that holds a position inside a parent scope (suite blocks in a
// suite, case blocks in a case, actions in an action group).
type OrderedBlock interface {
	TableName() string
	GetID() string
	SetID(id string)
	GetOrder() int
	SetOrder(order int)
	ScopeColumn() string
	ScopeID() string
	SetScopeID(id string)
}

var (
	_ OrderedBlock = (*SuiteBlock)(nil)
	_ OrderedBlock = (*CaseBlock)(nil)
	_ OrderedBlock = (*Action)(nil)
)
