// Package slackbot answers questions asked by mentioning the app in Slack.
//
// The bot holds a Socket Mode connection, so it needs no public endpoint.
// Each app_mention is acknowledged, answered in the mention's thread, and
// followed by a second message listing the sources the answer drew on.
package slackbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/custodia-labs/threadrag/internal/core/domain"
	"github.com/custodia-labs/threadrag/internal/core/ports/driving"
	"github.com/custodia-labs/threadrag/internal/logger"
)

// ErrorReply is posted in the thread when a question cannot be answered.
const ErrorReply = "Sorry, I encountered an error while processing your request."

// SourcesHeading introduces the list of source links.
const SourcesHeading = "*Relevant Sources:*"

// Config holds the bot's Slack credentials.
type Config struct {
	// BotToken (xoxb-) authorises posting replies.
	BotToken string

	// AppToken (xapp-) opens the Socket Mode connection.
	AppToken string

	// APIURL overrides the Web API base URL. Empty uses slack.com.
	APIURL string
}

// Bot answers app mentions with the answer service.
type Bot struct {
	answer driving.AnswerService
	client *slack.Client
}

// New creates a bot that answers with answer.
func New(answer driving.AnswerService, cfg Config) (*Bot, error) {
	if answer == nil {
		return nil, errors.New("slackbot: answer service not configured")
	}
	if cfg.BotToken == "" {
		return nil, domain.NewConfigurationError("credentials.slack_token", "SLACK_TOKEN is not set")
	}
	if cfg.AppToken == "" {
		return nil, domain.NewConfigurationError("credentials.slack_app_token", "SLACK_APP_TOKEN is not set")
	}

	opts := []slack.Option{slack.OptionAppLevelToken(cfg.AppToken)}
	if cfg.APIURL != "" {
		url := cfg.APIURL
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		opts = append(opts, slack.OptionAPIURL(url))
	}

	return &Bot{
		answer: answer,
		client: slack.New(cfg.BotToken, opts...),
	}, nil
}

// Run connects over Socket Mode and serves mentions until ctx is done.
// Mentions still being answered are waited for before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	client := socketmode.New(b.client)

	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-client.Events:
				if !ok {
					return
				}
				b.dispatch(ctx, evt, client.Ack, &wg)
			}
		}
	}()

	logger.Info("slackbot: starting Socket Mode connection")
	err := client.RunContext(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// dispatch acknowledges an event and answers it when it is a mention.
func (b *Bot) dispatch(
	ctx context.Context,
	evt socketmode.Event,
	ack func(req socketmode.Request, payload ...interface{}),
	wg *sync.WaitGroup,
) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		logger.Debug("slackbot: connecting")
	case socketmode.EventTypeConnected:
		logger.Info("slackbot: connected")
	case socketmode.EventTypeConnectionError:
		logger.Warn("slackbot: connection error: %v", evt.Data)
	case socketmode.EventTypeEventsAPI:
		if evt.Request != nil {
			ack(*evt.Request)
		}
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || apiEvent.Type != slackevents.CallbackEvent {
			return
		}
		mention, ok := apiEvent.InnerEvent.Data.(*slackevents.AppMentionEvent)
		if !ok {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.HandleMention(ctx, mention); err != nil {
				logger.Error("slackbot: mention %s: %v", mention.TimeStamp, err)
			}
		}()
	}
}

// HandleMention answers a mention in its thread. The answer comes first,
// then the source links when there are any. A failed answer is reported in
// the thread as ErrorReply.
func (b *Bot) HandleMention(ctx context.Context, ev *slackevents.AppMentionEvent) error {
	if ev.BotID != "" {
		return nil
	}
	thread := ev.ThreadTimeStamp
	if thread == "" {
		thread = ev.TimeStamp
	}

	answer, err := b.answer.Ask(ctx, ev.Text)
	if err != nil {
		if postErr := b.post(ctx, ev.Channel, thread, ErrorReply); postErr != nil {
			return errors.Join(err, postErr)
		}
		return err
	}

	if err := b.post(ctx, ev.Channel, thread, answer.Text); err != nil {
		return err
	}
	if len(answer.Links) == 0 {
		return nil
	}
	return b.post(ctx, ev.Channel, thread, SourcesText(answer.Links))
}

// SourcesText renders links as the bulleted sources message.
func SourcesText(links []string) string {
	var sb strings.Builder
	sb.WriteString(SourcesHeading)
	for _, link := range links {
		sb.WriteString("\n• ")
		sb.WriteString(link)
	}
	return sb.String()
}

func (b *Bot) post(ctx context.Context, channel, thread, text string) error {
	_, _, err := b.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(thread),
	)
	if err != nil {
		return fmt.Errorf("slackbot: post to %s: %w", channel, err)
	}
	return nil
}
