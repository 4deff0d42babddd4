package config

// Endpoints of the remote service
const (
	LoginPath        = "/login"
	RegisterPath     = "/register"
	RefreshPath      = "/refresh-token"
	LogoutPath       = "/logout"
	CheckGrammarPath = "/check-grammar"
	SuggestPath      = "/suggest-improvement"
)

// Pages the user is sent to once a step finishes
const (
	AfterLoginPage    = CheckGrammarPath
	AfterRegisterPage = LoginPath
	LoginPage         = LoginPath
)
