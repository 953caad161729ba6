package athle

import (
	"net/http/cookiejar"
	"time"

	"athletrack-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
)

const DefaultBaseUrl = "https://www.athle.fr/bases/liste.aspx"

// DelayPolicy returns how long to wait before a retry attempt is made.
type DelayPolicy func() time.Duration

// BackoffPolicy returns how long to wait after attempt number `attempt`
// (starting at 1) failed.
type BackoffPolicy func(attempt int) time.Duration

// UniformDelay sleeps a uniformly random duration inside [min,max],
// making successive requests look less mechanical.
func UniformDelay(min, max time.Duration) DelayPolicy {
	return func() time.Duration {
		ms, err := random.IntRange(int(min.Milliseconds()), int(max.Milliseconds())+1)
		if err != nil {
			return max
		}
		return time.Duration(ms) * time.Millisecond
	}
}

// ExponentialBackoff waits 2^attempt seconds.
func ExponentialBackoff() BackoffPolicy {
	return func(attempt int) time.Duration {
		return time.Duration(1<<uint(attempt)) * time.Second
	}
}

// NoWait is used in tests to run the retry loop without sleeping.
func NoWait() (DelayPolicy, BackoffPolicy) {
	return func() time.Duration { return 0 },
		func(int) time.Duration { return 0 }
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to 30s
	Timeout time.Duration
	// defaults to 3
	MaxRetries int
	// defaults to UniformDelay(2s, 3s)
	Delay DelayPolicy
	// defaults to ExponentialBackoff()
	Backoff BackoffPolicy
}

type Client struct {
	http       *resty.Client
	maxRetries int
	delay      DelayPolicy
	backoff    BackoffPolicy
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Delay == nil {
		opts.Delay = UniformDelay(time.Second*2, time.Second*3)
	}
	if opts.Backoff == nil {
		opts.Backoff = ExponentialBackoff()
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "scrapers/athle/http")

	return &Client{
		http:       client,
		maxRetries: opts.MaxRetries,
		delay:      opts.Delay,
		backoff:    opts.Backoff,
	}, nil
}

// a fresh identity per attempt, on top of what the cloudflare bypass
// transport already sets
func requestHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      browser.Random(),
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "fr-FR,fr;q=0.9,en;q=0.5",
	}
}
