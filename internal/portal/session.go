// Package portal establishes an authenticated session with the student portal.
package portal

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/portal-planner/internal/fetch"
)

// DefaultBaseURL is the production portal.
const DefaultBaseURL = "https://portal.aiub.edu"

// Portal paths, relative to the base URL.
const (
	StudentHomePath      = "/Student"
	CurriculumPath       = "/Student/Curriculum"
	CurriculumDetailPath = "/Common/Curriculum?ID="
	GradeReportPath      = "/Student/GradeReport/ByCurriculum"
	RegistrationPath     = "/Student/Registration?q="
)

const (
	evaluationPath = "/Student/Tpe/Start"
	captchaMarker  = "The answer is"
)

// Credentials are the portal login fields.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Options configures Login.
type Options struct {
	BaseURL    string
	Fetch      *fetch.Options
	UseBrowser bool // render authenticated pages in headless Chrome
	Logger     *zap.Logger
}

// Session is an authenticated portal session. It is read-only after Login returns
// and may be shared by concurrent fetches.
type Session struct {
	base  *url.URL
	pages fetch.Getter
}

// NewSession wraps an already authenticated page getter. It is mainly useful for
// tests and for replaying saved pages.
func NewSession(baseURL string, pages fetch.Getter) (*Session, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	return &Session{base: base, pages: pages}, nil
}

// Login posts the credentials to the portal and classifies the landing page.
func Login(ctx context.Context, creds Credentials, opts Options) (*Session, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, &AuthenticationError{
			Reason:  FailureMissingCredentials,
			Message: "Username and password are required",
		}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	fetchOpts := fetch.DefaultOptions()
	if opts.Fetch != nil {
		o := *opts.Fetch
		fetchOpts = &o
	}
	if fetchOpts.Logger == nil {
		fetchOpts.Logger = logger
	}
	client := fetch.NewClient(jar, fetchOpts)

	start := time.Now()
	landing, err := client.PostForm(ctx, base.String()+"/", url.Values{
		"UserName": {creds.Username},
		"Password": {creds.Password},
	})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	if err := classifyLanding(base, landing); err != nil {
		logger.Info("login rejected",
			zap.String("landing", landing.FinalURL),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Debug("login accepted", zap.Duration("elapsed", time.Since(start)))

	var pages fetch.Getter = client
	if opts.UseBrowser {
		pages = fetch.NewBrowserClient(jar, fetchOpts.Timeout, logger)
	}
	return &Session{base: base, pages: pages}, nil
}

// classifyLanding inspects where the login POST ended up.
func classifyLanding(base *url.URL, landing *fetch.Result) error {
	final, err := url.Parse(landing.FinalURL)
	if err != nil || final.Host != base.Host || !strings.HasPrefix(final.Path, base.Path+StudentHomePath) {
		if strings.Contains(landing.HTML, captchaMarker) {
			return &AuthenticationError{
				Reason:  FailureCaptchaRequired,
				Message: "Captcha required. Solve it from portal.",
			}
		}
		return &AuthenticationError{
			Reason:  FailureInvalidCredentials,
			Message: "Invalid username or password",
		}
	}

	if strings.HasPrefix(final.Path, base.Path+evaluationPath) {
		return &AuthenticationError{
			Reason:  FailureEvaluationPending,
			Message: "TPE Evaluation pending on portal",
		}
	}
	return nil
}

// URL resolves a portal path against the base URL.
func (s *Session) URL(path string) string {
	return s.base.String() + path
}

// Get fetches a portal page by path.
func (s *Session) Get(ctx context.Context, path string) (*fetch.Result, error) {
	return s.pages.Get(ctx, s.URL(path))
}

func parseBase(raw string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid portal base URL %q", raw)
	}
	return base, nil
}
