package server

// Access levels of client routes.
const (
	AccessPublic = "public"
	AccessGuest  = "guest"
	AccessAuth   = "auth"
	AccessAdmin  = "admin"
)

// ClientRoute is a path the front end serves, with the access it requires
// and the layout it renders in.
type ClientRoute struct {
	Path   string `json:"path"`
	Title  string `json:"title"`
	Access string `json:"access"`
	Layout string `json:"layout"`
}

// ClientRoutes is the navigation table of the web client.
var ClientRoutes = []ClientRoute{
	{Path: "/", Title: "Home", Access: AccessPublic, Layout: "marketing"},
	{Path: "/pricing", Title: "Pricing", Access: AccessPublic, Layout: "marketing"},
	{Path: "/login", Title: "Sign in", Access: AccessGuest, Layout: "auth"},
	{Path: "/signup", Title: "Create account", Access: AccessGuest, Layout: "auth"},
	{Path: "/verify", Title: "Verify email", Access: AccessGuest, Layout: "auth"},
	{Path: "/dashboard", Title: "Valuation overview", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/questionnaire", Title: "Questionnaire", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/reports/new", Title: "Generate report", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/reports/{id}", Title: "Report", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/history", Title: "History", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/projections", Title: "Projections", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/portfolio", Title: "Portfolio", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/company", Title: "Company profile", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/billing", Title: "Billing", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/support", Title: "Support", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/dashboard/settings/notifications", Title: "Notification settings", Access: AccessAuth, Layout: "dashboard"},
	{Path: "/admin", Title: "Admin dashboard", Access: AccessAdmin, Layout: "admin"},
	{Path: "/admin/companies", Title: "Companies", Access: AccessAdmin, Layout: "admin"},
	{Path: "/admin/support", Title: "Support", Access: AccessAdmin, Layout: "admin"},
	{Path: "/admin/subscriptions", Title: "Subscriptions", Access: AccessAdmin, Layout: "admin"},
	{Path: "/admin/settings", Title: "Settings", Access: AccessAdmin, Layout: "admin"},
}
