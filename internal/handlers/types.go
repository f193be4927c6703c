package handlers

import "time"

// ShortenRequest is the request for creating a short URL.
type ShortenRequest struct {
	OwnerID string `doc:"Caller identity used for per user metrics" header:"X-User-UUID" required:"false"`
	Body    struct {
		LongURL     string `doc:"The URL to shorten"             example:"https://example.com/very/long/path" json:"longUrl"`
		CustomAlias string `doc:"Optional caller chosen short code" example:"my-link"                         json:"customAlias,omitempty"`
	}
}

// ShortenResponse is the response for a shortened URL. Resubmitting a known
// long URL returns the original mapping.
type ShortenResponse struct {
	Body struct {
		ShortCode string    `doc:"The short code"              example:"3KfZ1o8Wq2"                       json:"shortCode"`
		ShortURL  string    `doc:"The full short URL"          example:"http://localhost:8888/3KfZ1o8Wq2" json:"shortUrl"`
		CreatedAt time.Time `doc:"When the mapping was created" json:"createdAt"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"3KfZ1o8Wq2" path:"code"`
}

// RedirectResponse is a permanent redirect to the stored long URL.
type RedirectResponse struct {
	Status       int
	Location     string `header:"Location"`
	CacheControl string `header:"Cache-Control"`
	RobotsTag    string `header:"X-Robots-Tag"`
}

// UserMetric is the number of mappings created by one owner.
type UserMetric struct {
	UserID string `json:"userId"`
	Count  int64  `json:"count"`
}

// UserMetricsResponse lists mapping counts per owner.
type UserMetricsResponse struct {
	Body []UserMetric
}

// InspectRequest is the request for decoding a generated short code.
type InspectRequest struct {
	Code string `doc:"A generated short code" example:"3KfZ1o8Wq2" path:"code"`
}

// InspectResponse describes the identifier behind a generated short code.
type InspectResponse struct {
	Body struct {
		Code         string    `json:"code"`
		ID           string    `doc:"The 64-bit identifier in decimal" json:"id"`
		Timestamp    time.Time `json:"timestamp"`
		DatacenterID int64     `json:"datacenterId"`
		MachineID    int64     `json:"machineId"`
		Sequence     int64     `json:"sequence"`
	}
}
