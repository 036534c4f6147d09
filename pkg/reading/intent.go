package reading

type IntentKind int

const (
	IntentNavigate IntentKind = iota
	IntentNotify
)

type Notice int

const (
	NoticeNone Notice = iota
	NoticeLoginRequired
	NoticeSubscriptionRequired
	NoticeFirstChapter
	NoticeLastChapter
	NoticeLoadFailed
	NoticeAutoAdvance
)

var noticeMessages = map[Notice]string{
	NoticeLoginRequired:        "Login is required to read this chapter.",
	NoticeSubscriptionRequired: "This chapter is available to subscribers only.",
	NoticeFirstChapter:         "This is the first chapter.",
	NoticeLastChapter:          "This is the last chapter.",
	NoticeLoadFailed:           "The chapter could not be loaded.",
	NoticeAutoAdvance:          "Moving to the next chapter shortly.",
}

func (n Notice) Message() string {
	return noticeMessages[n]
}

// Intent is what a session asks the presentation layer to do. The session
// never navigates by itself.
type Intent struct {
	Kind    IntentKind
	Path    string
	Notice  Notice
	Message string
}

func Navigate(path string) Intent {
	return Intent{Kind: IntentNavigate, Path: path}
}

func Notify(n Notice, message string) Intent {
	if message == "" {
		message = n.Message()
	}
	return Intent{Kind: IntentNotify, Notice: n, Message: message}
}

type Sink interface {
	Emit(Intent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Intent)

func (f SinkFunc) Emit(i Intent) { f(i) }
