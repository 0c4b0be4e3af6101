package health

// Response HTTP response model
type Response struct {
	Status          string `json:"status"`
	CacheEntries    int    `json:"cacheEntries"`
	InFlightFetches int    `json:"inFlightFetches"`
	Database        string `json:"database,omitempty"`
}
