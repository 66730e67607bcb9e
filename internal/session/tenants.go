package session

// Tenant is a company a user belongs to.
type Tenant struct {
	ID   string
	Name string
}

// DefaultTenant is assigned when the email domain is not in the directory.
var DefaultTenant = Tenant{ID: "default", Name: "Default Company"}

// tenantDirectory maps email domains to tenants. This stands in for a
// real tenant lookup on the backend; the assignment is deterministic so
// the same email always lands in the same tenant.
var tenantDirectory = map[string]Tenant{
	"company1.com": {ID: "tenant-1", Name: "Company 1"},
	"company2.com": {ID: "tenant-2", Name: "Company 2"},
	"demo.com":     {ID: "demo", Name: "Demo Company"},
}

// TenantForDomain resolves an email domain to its tenant, falling back to
// DefaultTenant for unknown domains.
func TenantForDomain(domain string) Tenant {
	if t, ok := tenantDirectory[domain]; ok {
		return t
	}
	return DefaultTenant
}
