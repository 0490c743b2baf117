package statemachine

import (
	"fmt"
	"strings"

	"foodhub-api/models"
)

// ActorProvider is the only actor allowed to move the delivery status
const ActorProvider = "provider"

// Transition defines a valid delivery state change and who can perform it
type Transition struct {
	From  models.DeliveryStatus `json:"from"`
	To    models.DeliveryStatus `json:"to"`
	Actor string                `json:"actor"`
}

// validTransitions is the authoritative delivery state machine definition
var validTransitions = []Transition{
	// Provider starts cooking
	{From: models.StatusPlaced, To: models.StatusPreparing, Actor: ActorProvider},
	// Provider hands the order to its courier
	{From: models.StatusPreparing, To: models.StatusOutForDelivery, Actor: ActorProvider},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: ActorProvider},
}

type transitionKey struct {
	From  models.DeliveryStatus
	To    models.DeliveryStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.DeliveryStatus) []models.DeliveryStatus {
	var nexts []models.DeliveryStatus
	seen := map[models.DeliveryStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.DeliveryStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.DeliveryStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.DeliveryStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}
