package config

const (
	defaultConfigLocation = "~/.config/newshub/config.toml"

	defaultOutputDir   = "~/newshub/outputs"
	defaultInputDir    = "~/newshub/inputs"
	defaultSourcesFile = "~/.config/newshub/sources.yaml"
	defaultLogDir      = "~/.local/state/newshub/logs"

	defaultMinContentLength  = 150
	defaultMaxRetries        = 1
	defaultRetryDelaySeconds = 3
	defaultBrowserTimeout    = 60
	defaultHTTPTimeout       = 30
	defaultTranscriptRate    = 1.0
	defaultTranscriptAPIURL  = "https://www.youtube-transcript.io/api/transcripts"
	defaultTranscriptToolURL = "https://tactiq.io/tools/youtube-transcript"
	defaultUserAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultPoeBaseURL        = "https://api.poe.com/v1"
	defaultOllamaURL         = "http://localhost:11434"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultGenerationTimeout = 300
	defaultGenerationReferer = "https://github.com/lizzypokerface/news-hub-aggregator"
	defaultGenerationTitle   = "newshub"
	defaultDriverResetLimit  = 25
	defaultTitleTimeout      = 15
	defaultTitlePageWait     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			InputDir:    defaultInputDir,
			SourcesFile: defaultSourcesFile,
			LogDir:      defaultLogDir,
		},
		Logging: Logging{
			Format: "auto",
			Level:  "info",
		},
		Extraction: Extraction{
			MinContentLength:        defaultMinContentLength,
			MaxRetries:              defaultMaxRetries,
			RetryDelaySeconds:       defaultRetryDelaySeconds,
			BrowserTimeoutSeconds:   defaultBrowserTimeout,
			HTTPTimeoutSeconds:      defaultHTTPTimeout,
			Headless:                true,
			TranscriptRatePerSecond: defaultTranscriptRate,
			TranscriptAPIURL:        defaultTranscriptAPIURL,
			TranscriptToolURL:       defaultTranscriptToolURL,
			UserAgent:               defaultUserAgent,
		},
		Generation: Generation{
			PoeBaseURL:        defaultPoeBaseURL,
			OllamaURL:         defaultOllamaURL,
			OpenRouterBaseURL: defaultOpenRouterBaseURL,
			Referer:           defaultGenerationReferer,
			Title:             defaultGenerationTitle,
			TimeoutSeconds:    defaultGenerationTimeout,
		},
		Models: Models{
			MainstreamNarrative: ModelRef{Provider: "poe", Model: "Gemini-2.5-Pro"},
			GeopoliticalLedger:  ModelRef{Provider: "poe", Model: "Claude-Opus-4.5"},
			IntelBrief:          ModelRef{Provider: "poe", Model: "Gemini-3-Flash"},
			MaterialistAnalysis: ModelRef{Provider: "poe", Model: "Gemini-2.5-Flash"},
			GlobalBriefing:      ModelRef{Provider: "poe", Model: "Gemini-2.5-Pro"},
			MultiLens:           ModelRef{Provider: "poe", Model: "Gemini-2.5-Flash"},
			Categoriser:         ModelRef{Provider: "ollama", Model: "qwen2.5:14b"},
		},
		TitleFetch: TitleFetch{
			DriverResetThreshold:  defaultDriverResetLimit,
			RequestTimeoutSeconds: defaultTitleTimeout,
			PageWaitSeconds:       defaultTitlePageWait,
		},
		Post: Post{
			Layout:      "post",
			TitlePrefix: "🌏 Global Briefing",
			Categories:  "weekly news",
			PublishTime: "08:00:00",
			UTCOffset:   "+0800",
		},
	}
}
