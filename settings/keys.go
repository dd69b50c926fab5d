package settings

// Setting keys read by the web tier.
const (
	KeyEnableUserWorkspace    = "enable_user_workspace"
	KeyEnableAudioFileSupport = "enable_audio_file_support"

	KeySpeechServiceEndpoint = "speech_service_endpoint"
	KeySpeechServiceKey      = "speech_service_key"
	KeySpeechServiceLocation = "speech_service_location"
	KeySpeechServiceLocale   = "speech_service_locale"
)

// Defaults returns the values seeded into an empty store. Features start
// disabled until an administrator turns them on.
func Defaults() Settings {
	return Settings{
		KeyEnableUserWorkspace:    false,
		KeyEnableAudioFileSupport: false,
		KeySpeechServiceEndpoint:  "",
		KeySpeechServiceKey:       "",
		KeySpeechServiceLocation:  "",
		KeySpeechServiceLocale:    "en-US",
	}
}
