package lastfm

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

const (
	// AuthCallbackPort is the port used for the local OAuth callback server.
	AuthCallbackPort = 9847

	// AuthTimeout bounds the wait for the user to authorize in the browser.
	AuthTimeout = 5 * time.Minute
)

// ErrAuthTimeout is returned when no token arrives in time.
var ErrAuthTimeout = errors.New("timed out waiting for Last.fm authorization")

// ErrAuthDenied is returned when the callback carries no token.
var ErrAuthDenied = errors.New("no token received from Last.fm")

// callbackPage is shown in the browser once Last.fm redirects back.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>wavesd - Last.fm</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
{{if .}}<h1>Account linked</h1>
<p>You can close this window.</p>
{{else}}<h1>Authorization failed</h1>
<p>Last.fm sent no token. Run wavesctl lastfm-auth again.</p>
{{end}}</body>
</html>
`))

// AuthServer receives the token Last.fm appends to the callback URL.
type AuthServer struct {
	srv    *http.Server
	ln     net.Listener
	tokens chan string
	done   chan struct{}
}

// StartAuthServer listens on the loopback callback port. Only the first
// callback is delivered.
func StartAuthServer() (*AuthServer, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", AuthCallbackPort))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", AuthCallbackPort, err)
	}

	as := &AuthServer{
		ln:     ln,
		tokens: make(chan string, 1),
		done:   make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", as.handleCallback)
	as.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		defer close(as.done)
		if err := as.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Debug("last.fm callback server", "error", err)
		}
	}()
	return as, nil
}

func (as *AuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := callbackPage.Execute(w, token != ""); err != nil {
		slog.Debug("render callback page", "error", err)
	}
	select {
	case as.tokens <- token:
	default:
	}
}

// CallbackURL is the address Last.fm redirects to.
func (as *AuthServer) CallbackURL() string {
	return "http://" + as.ln.Addr().String() + "/callback"
}

// TokenChan delivers the callback token, empty when the user declined.
func (as *AuthServer) TokenChan() <-chan string {
	return as.tokens
}

// Shutdown stops the server and waits for it to exit.
func (as *AuthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = as.srv.Shutdown(ctx)
	<-as.done
}

// OpenBrowser hands url to the desktop's URL opener.
func OpenBrowser(url string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	path, err := exec.LookPath(opener)
	if err != nil {
		return fmt.Errorf("no URL opener: %w", err)
	}
	return exec.Command(path, url).Start()
}

// WaitForToken waits for the callback token, the timeout or ctx.
func WaitForToken(ctx context.Context, tokens <-chan string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case token := <-tokens:
		if token == "" {
			return "", ErrAuthDenied
		}
		return token, nil
	case <-timer.C:
		return "", ErrAuthTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Authorize runs the web auth flow: it serves the callback, hands the
// authorization URL to open, and exchanges the returned token for a session.
func Authorize(ctx context.Context, client *Client, open func(url string) error) (Session, error) {
	as, err := StartAuthServer()
	if err != nil {
		return Session{}, err
	}
	defer as.Shutdown()

	if err := open(client.CallbackAuthURL(as.CallbackURL())); err != nil {
		return Session{}, fmt.Errorf("open authorization page: %w", err)
	}

	token, err := WaitForToken(ctx, as.TokenChan(), AuthTimeout)
	if err != nil {
		return Session{}, err
	}
	return client.Login(token)
}
