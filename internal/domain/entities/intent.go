package entities

// IntentKind classifies a user utterance.
type IntentKind int

const (
	IntentQuestion IntentKind = iota
	IntentQuit
	IntentThanks
	IntentOffensive
	IntentEmotion
	IntentSearch
	IntentJoke
	IntentDevice
)

func (k IntentKind) String() string {
	switch k {
	case IntentQuestion:
		return "question"
	case IntentQuit:
		return "quit"
	case IntentThanks:
		return "thanks"
	case IntentOffensive:
		return "offensive"
	case IntentEmotion:
		return "emotion"
	case IntentSearch:
		return "search"
	case IntentJoke:
		return "joke"
	case IntentDevice:
		return "device"
	default:
		return "unknown"
	}
}

// DeviceCommand is the token sent to an attached device.
type DeviceCommand string

const (
	DeviceOn  DeviceCommand = "turn_on"
	DeviceOff DeviceCommand = "turn_off"
)

// Intent is a classified utterance with its payload.
type Intent struct {
	Kind    IntentKind
	Emotion string        // IntentEmotion
	Query   string        // IntentSearch: text after the trigger
	Command DeviceCommand // IntentDevice
	Text    string        // IntentQuestion: the raw utterance
}

// EmotionKeywords maps an emotion label to the words that signal it.
type EmotionKeywords struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Vocabulary holds every word list and canned response used to classify
// and answer small talk. It is plain configuration, passed in at
// construction.
type Vocabulary struct {
	QuitWord         string            `yaml:"quit_word"`
	GratitudePhrases []string          `yaml:"gratitude_phrases"`
	OffensiveTerms   []string          `yaml:"offensive_terms"`
	Emotions         []EmotionKeywords `yaml:"emotions"`
	SearchTriggers   []string          `yaml:"search_triggers"`
	JokeKeywords     []string          `yaml:"joke_keywords"`
	DeviceOnPhrases  []string          `yaml:"device_on_phrases"`
	DeviceOffPhrases []string          `yaml:"device_off_phrases"`

	Responses Responses `yaml:"responses"`
	Jokes     []string  `yaml:"jokes"`
}

// Responses are the reply pools and fixed messages.
type Responses struct {
	Thanks         []string `yaml:"thanks"`
	Goodbye        []string `yaml:"goodbye"`
	Confused       []string `yaml:"confused"`
	Apology        []string `yaml:"apology"`
	EmotionDefault string   `yaml:"emotion_default"`
	QuotaExceeded  string   `yaml:"quota_exceeded"`
	NoAnswer       string   `yaml:"no_answer"`
	SearchFailed   string   `yaml:"search_failed"`
	NoDevice       string   `yaml:"no_device"`
	DeviceFailed   string   `yaml:"device_failed"`
}
