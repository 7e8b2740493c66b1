package interactions

import (
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/rest"
)

const colourRed discord.Color = 0xE74C3C

// run calls the handler and makes sure the interaction gets some response.
func (s *Server) run(ev *Event, name string, h HandlerFunc, cancel func()) {
	defer cancel()

	err := call(ev, h)
	if err == nil {
		if !ev.handled() {
			s.log.Warnf("Handler for %q returned without responding", name)
			if err := ev.ReplyEphemeral("Nothing to see here."); err != nil {
				s.log.Errorf("Error sending fallback response: %v", err)
			}
		}
		return
	}

	s.log.Errorf("Error in handler for %q: %v", name, err)
	if err := s.ReportError(ev, err); err != nil {
		s.log.Errorf("Error sending error message: %v", err)
	}
}

func call(ev *Event, h HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return h(ev)
}

// ReportError sends err to Sentry, if it's set up, and shows the user an error code.
func (s *Server) ReportError(ev *Event, err error) error {
	id := s.capture(ev, err)

	content := fmt.Sprintf("Error code: ``%v``", id)
	ts := discord.NowTimestamp()
	embed := discord.Embed{
		Title:       "Internal error occurred",
		Description: "An internal error has occurred. If this issue persists, please contact the developer with the error code above.",
		Color:       colourRed,
		Timestamp:   &ts,
		Footer: &discord.EmbedFooter{
			Text: id,
		},
	}

	if !ev.handled() {
		return ev.ReplyEphemeral(content, embed)
	}

	_, err = ev.FollowUp(rest.ExecuteWebhookData{
		Content: content,
		Embeds:  []discord.Embed{embed},
		Flags:   discord.EphemeralMessage,
	})
	return err
}

// capture returns the Sentry event ID, or a random ID if Sentry isn't set up.
func (s *Server) capture(ev *Event, err error) string {
	if ev.Hub != nil {
		user := ev.Sender()

		ev.Hub.ConfigureScope(func(scope *sentry.Scope) {
			if user != nil {
				scope.SetUser(sentry.User{ID: user.ID.String()})
			}
			scope.SetTag("interaction_type", fmt.Sprint(ev.Type))
		})

		data := map[string]any{"interaction": ev.ID}
		if ev.GuildID.IsValid() {
			data["guild"] = ev.GuildID
		}
		ev.Hub.AddBreadcrumb(&sentry.Breadcrumb{
			Data:      data,
			Level:     sentry.LevelError,
			Timestamp: time.Now().UTC(),
		}, nil)

		if id := ev.Hub.CaptureException(err); id != nil {
			return string(*id)
		}
	}
	return uuid.New().String()
}
