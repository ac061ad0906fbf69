package application

import (
	"sync"

	"github.com/mervel/storefront/imagery/domain"
	"github.com/sirupsen/logrus"
)

var noticeMessages = map[domain.FailureKind]string{
	domain.FailurePaymentRequired: "AI credits exhausted. Please add credits to generate product images.",
	domain.FailureRateLimited:     "Rate limit reached. Images will generate shortly.",
}

// Notifier announces each failure kind at most once for its lifetime.
// Generic failures are never announced.
type Notifier struct {
	mu    sync.Mutex
	shown map[domain.FailureKind]bool
	sinks []func(domain.Notice)
}

func NewNotifier() *Notifier {
	return &Notifier{shown: make(map[domain.FailureKind]bool)}
}

// Subscribe registers a sink that receives every announced notice.
func (n *Notifier) Subscribe(sink func(domain.Notice)) {
	n.mu.Lock()
	n.sinks = append(n.sinks, sink)
	n.mu.Unlock()
}

// Notify returns the notice and true the first time kind is seen.
func (n *Notifier) Notify(kind domain.FailureKind) (domain.Notice, bool) {
	msg, ok := noticeMessages[kind]
	if !ok {
		return domain.Notice{}, false
	}

	n.mu.Lock()
	if n.shown[kind] {
		n.mu.Unlock()
		return domain.Notice{}, false
	}
	n.shown[kind] = true
	sinks := append([]func(domain.Notice){}, n.sinks...)
	n.mu.Unlock()

	notice := domain.Notice{Kind: kind, Message: msg}
	logrus.Warnf("[IMAGERY] %s", msg)
	for _, sink := range sinks {
		sink(notice)
	}
	return notice, true
}

// Shown lists the kinds already announced.
func (n *Notifier) Shown() []domain.FailureKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.FailureKind, 0, len(n.shown))
	for k := range n.shown {
		out = append(out, k)
	}
	return out
}
