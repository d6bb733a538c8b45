package notify

import (
	"fmt"
	"log"

	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/bwmarrin/discordgo"
)

// Messenger is the slice of discordgo the relay needs; *discordgo.Session
// satisfies it
type Messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordRelay mirrors combat narration to a Discord channel. It is a
// pure event-channel consumer: the pipeline never knows it exists.
type DiscordRelay struct {
	session   Messenger
	channelID string
	unsubs    []func()
}

// DiscordRelayConfig holds configuration for the relay
type DiscordRelayConfig struct {
	Session   Messenger
	ChannelID string
}

// NewDiscordRelay creates a relay; call Attach to start forwarding
func NewDiscordRelay(cfg *DiscordRelayConfig) (*DiscordRelay, error) {
	if cfg == nil || cfg.Session == nil {
		return nil, fmt.Errorf("discord session is required")
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord channel id is required")
	}

	return &DiscordRelay{
		session:   cfg.Session,
		channelID: cfg.ChannelID,
	}, nil
}

// Attach subscribes the relay to the pipeline's events
func (r *DiscordRelay) Attach(bus *events.Bus) {
	r.unsubs = append(r.unsubs,
		bus.Subscribe(events.EventMovementCompleted, func(payload any) {
			p, ok := payload.(events.MovementCompletedPayload)
			if !ok {
				return
			}
			r.send(fmt.Sprintf("**%s** moved %s → %s", p.CombatantID, p.From, p.To))
		}),
		bus.Subscribe(events.EventReactionResolved, func(payload any) {
			p, ok := payload.(events.ReactionResolvedPayload)
			if !ok {
				return
			}
			if p.Hit {
				r.send(fmt.Sprintf("⚔️ %s (%d damage)", p.Description, p.Damage))
			} else {
				r.send(fmt.Sprintf("🛡️ %s", p.Description))
			}
		}),
		bus.Subscribe(events.EventErrorOccurred, func(payload any) {
			p, ok := payload.(events.ErrorOccurredPayload)
			if !ok {
				return
			}
			r.send(fmt.Sprintf("⚠️ %s", p.Message))
		}),
	)
}

// Detach removes the relay's subscriptions
func (r *DiscordRelay) Detach() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *DiscordRelay) send(content string) {
	if _, err := r.session.ChannelMessageSend(r.channelID, content); err != nil {
		log.Printf("DiscordRelay: failed to send message: %v", err)
	}
}
