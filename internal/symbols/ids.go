package symbols

type (
	ScopeID uint32
	VarID   uint32
)

const (
	NoScopeID ScopeID = 0
	NoVarID   VarID   = 0
)

func (id ScopeID) IsValid() bool { return id != NoScopeID }
func (id VarID) IsValid() bool   { return id != NoVarID }
