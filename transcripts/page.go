package transcripts

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/audiodesk/auth"
	"github.com/kbukum/audiodesk/flash"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/settings"
	"github.com/kbukum/audiodesk/web"
)

const (
	// PageTemplate is the template rendered by PageHandler.
	PageTemplate = "transcripts.html"
	// ChatsPath is where the page redirects when audio support is off.
	ChatsPath = "/chats"
	// AudioDisabledMessage is the notice shown after that redirect.
	AudioDisabledMessage = "Audio transcription is currently disabled by your administrator."
)

// AudioFileExtensions are the upload formats accepted for transcription.
var AudioFileExtensions = []string{"aac", "flac", "m4a", "mp3", "ogg", "wav"}

// PageViewModel is the data the transcripts template receives. The JSON form
// is embedded in the page for its script.
type PageViewModel struct {
	Settings              settings.Settings `json:"settings"`
	AudioExtensions       []string          `json:"audio_extensions"`
	AudioAccept           string            `json:"audio_accept"`
	SpeechConfigured      bool              `json:"speech_configured"`
	SpeechServiceEndpoint string            `json:"speech_service_endpoint,omitempty"`
	SpeechServiceLocale   string            `json:"speech_service_locale,omitempty"`
}

// BuildPageViewModel derives the view model from a raw settings snapshot.
// Only the sanitized copy of the settings is placed in the model.
func BuildPageViewModel(raw settings.Settings, extensions []string) PageViewModel {
	sorted := append([]string(nil), extensions...)
	sort.Strings(sorted)

	accept := make([]string, len(sorted))
	for i, ext := range sorted {
		accept[i] = "." + strings.ToLower(ext)
	}

	return PageViewModel{
		Settings:              settings.Sanitize(raw),
		AudioExtensions:       sorted,
		AudioAccept:           strings.Join(accept, ","),
		SpeechConfigured:      SpeechConfigured(raw),
		SpeechServiceEndpoint: raw.String(settings.KeySpeechServiceEndpoint),
		SpeechServiceLocale:   raw.String(settings.KeySpeechServiceLocale),
	}
}

// SpeechConfigured reports whether the speech endpoint and either a key or
// a location are set.
func SpeechConfigured(s settings.Settings) bool {
	return s.Present(settings.KeySpeechServiceEndpoint) &&
		(s.Present(settings.KeySpeechServiceKey) || s.Present(settings.KeySpeechServiceLocation))
}

// PageHandler serves GET /transcripts. Login, role and workspace checks run
// as guards before it.
type PageHandler struct {
	settings   settings.Store
	flashes    flash.Store
	renderer   web.Renderer
	extensions []string
	metrics    *observability.Metrics
	log        *logger.Logger
}

// NewPageHandler creates the page handler. metrics may be nil.
func NewPageHandler(store settings.Store, flashes flash.Store, renderer web.Renderer, metrics *observability.Metrics, log *logger.Logger) *PageHandler {
	return &PageHandler{
		settings:   store,
		flashes:    flashes,
		renderer:   renderer,
		extensions: AudioFileExtensions,
		metrics:    metrics,
		log:        log.WithComponent("transcripts"),
	}
}

// Serve redirects to the chats page with a warning when audio support is
// off and renders the transcripts page otherwise. Any other failure is
// logged once and returned unchanged.
func (h *PageHandler) Serve(c *gin.Context) error {
	ctx, span := observability.StartSpan(c.Request.Context(), "transcripts.page")
	defer span.End()

	userID := auth.UserID(ctx)
	log := h.log.WithContext(logger.ContextWithUserID(ctx, userID))
	log.Debug("Rendering transcripts page")

	outcome, err := h.serve(ctx, c, log)
	if err != nil {
		log.Error("Failed to render transcripts page", logger.Fields(logger.FieldError, err.Error()))
		observability.SetSpanError(span, err)
		outcome = observability.OutcomeFailed
	}
	span.SetAttributes(
		attribute.String(observability.AttrOutcome, outcome),
		attribute.String(observability.AttrUserID, userID),
	)
	h.metrics.RecordPageOutcome(ctx, outcome)
	return err
}

func (h *PageHandler) serve(ctx context.Context, c *gin.Context, log *logger.Logger) (string, error) {
	current, err := h.settings.Get(ctx)
	if err != nil {
		return "", err
	}

	if !current.Enabled(settings.KeyEnableAudioFileSupport) {
		if err := h.flashes.Add(c, flash.Warning(AudioDisabledMessage)); err != nil {
			return "", err
		}
		log.Info("Audio support disabled in settings, redirecting to chats")
		c.Redirect(http.StatusFound, ChatsPath)
		return observability.OutcomeRedirected, nil
	}

	vm := BuildPageViewModel(current, h.extensions)
	log.Debug("Transcripts page context prepared", logger.Fields(
		"speech_configured", vm.SpeechConfigured,
		"extensions", strings.Join(vm.AudioExtensions, ","),
	))

	if err := h.renderer.Render(c, http.StatusOK, PageTemplate, vm); err != nil {
		return "", err
	}
	return observability.OutcomeRendered, nil
}
