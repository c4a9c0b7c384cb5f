package domain

import "time"

// ExtractionProfile names a strategy for reducing raw page markup to text
// and metadata.
type ExtractionProfile string

const (
	ProfileGeneric        ExtractionProfile = "generic"
	ProfileProduct        ExtractionProfile = "product"
	ProfileProductListing ExtractionProfile = "product-listing"
	ProfileArticle        ExtractionProfile = "article"
	ProfileReview         ExtractionProfile = "review"
)

// AllowedDomain is one allowlist policy entry. Entries are loaded at
// startup and immutable afterwards.
type AllowedDomain struct {
	Domain            string              `yaml:"domain"`
	AllowSubdomains   bool                `yaml:"allow_subdomains"`
	Profiles          []ExtractionProfile `yaml:"profiles"`
	RequestsPerMinute int                 `yaml:"requests_per_minute"`
	CacheTTLSeconds   int                 `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the domain's default response cache TTL.
func (d AllowedDomain) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// PermitsProfile reports whether the policy entry allows the profile.
func (d AllowedDomain) PermitsProfile(p ExtractionProfile) bool {
	for _, allowed := range d.Profiles {
		if allowed == p {
			return true
		}
	}
	return false
}

// FetchSource tags where a fetch result came from.
type FetchSource string

const (
	SourceCache FetchSource = "cache"
	SourceLive  FetchSource = "live"
)

// Extraction is the Content Extractor's output: a text excerpt plus
// structured metadata pulled from the document head and profile-specific
// elements.
type Extraction struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// FetchResult is the tagged success value of a Fetch Core call.
type FetchResult struct {
	URL       string            `json:"url"`
	Profile   ExtractionProfile `json:"profile"`
	Source    FetchSource       `json:"source"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	FetchedAt time.Time         `json:"fetched_at"`
}
