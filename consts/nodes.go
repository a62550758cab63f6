package consts

// Workflow node identifiers. The router only ever moves between these.
const (
	NodeStart        = "start"
	NodeFundamentals = "fundamentals"
	NodeAssisted     = "assisted"
	NodeDivergence   = "divergence"
	NodeDebate       = "debate"
	NodeResolve      = "resolve"
	NodeProposal     = "proposal"
	NodeDone         = "done"
	NodeError        = "error"
)

// Debate roles passed to the completion collaborator.
const (
	RoleBull      = "bull"
	RoleBear      = "bear"
	RoleSynthesis = "synthesis"
	RoleAssisted  = "fundamentals_advisor"
	RoleAgentic   = "agentic_advisor"
)
