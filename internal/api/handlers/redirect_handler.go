package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"linkr/internal/engine/redirect"
	"linkr/internal/pkg/geoip"
	"linkr/internal/pkg/parser"
)

type RedirectHandler struct {
	dispatcher  *redirect.Dispatcher
	geoResolver geoip.Resolver
}

func NewRedirectHandler(dispatcher *redirect.Dispatcher, resolver geoip.Resolver) *RedirectHandler {
	return &RedirectHandler{
		dispatcher:  dispatcher,
		geoResolver: resolver,
	}
}

// Handle serves GET /{code}. It is mounted as the router's fallback because
// httprouter cannot mix a root-level wildcard with the /api prefix.
func (h *RedirectHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	identifier := strings.TrimPrefix(r.URL.Path, "/")
	if identifier == "" || strings.Contains(identifier, "/") {
		http.NotFound(w, r)
		return
	}

	resolution, err := h.dispatcher.Resolve(r.Context(), identifier, h.scanMeta(r))
	if err != nil {
		log.Error().Err(err).Str("identifier", identifier).Msg("resolution failed")
		http.Error(w, "Service unavailable", http.StatusInternalServerError)
		return
	}

	switch resolution.Outcome {
	case redirect.OutcomeNotFound:
		http.NotFound(w, r)
	case redirect.OutcomeGone:
		http.Error(w, "Link expired", http.StatusGone)
	default:
		// Always 302. A permanent redirect would let clients pin the old
		// destination across destination updates.
		http.Redirect(w, r, resolution.Destination, http.StatusFound)
	}
}

func (h *RedirectHandler) scanMeta(r *http.Request) redirect.ScanMeta {
	ua := r.UserAgent()
	os, browser := parser.ParseUserAgent(ua)

	country := r.Header.Get("CF-IPCountry")
	city := r.Header.Get("CF-IPCity")
	if country == "" && h.geoResolver != nil {
		if c, ct, err := h.geoResolver.Locate(clientIP(r)); err == nil {
			country, city = c, ct
		}
	}

	return redirect.ScanMeta{
		UserAgent: ua,
		Referrer:  r.Referer(),
		Country:   country,
		City:      city,
		Device:    parser.DeviceClass(ua),
		OS:        os,
		Browser:   browser,
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
