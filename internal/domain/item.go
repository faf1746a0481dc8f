package domain

import "time"

// QueueType names a category of exposure slots. Each queue type has its own
// order column and eligibility predicate.
type QueueType string

const (
	QueuePremium     QueueType = "premium"
	QueueRecommended QueueType = "recommended"
	QueueGeneral     QueueType = "general"
	QueueBoost       QueueType = "boost"
)

// AllQueues lists every queue type in the order the compactor visits them.
var AllQueues = []QueueType{QueuePremium, QueueRecommended, QueueGeneral, QueueBoost}

func (q QueueType) IsValid() bool {
	switch q {
	case QueuePremium, QueueRecommended, QueueGeneral, QueueBoost:
		return true
	}
	return false
}

// ParseQueueType validates a caller-supplied queue name.
func ParseQueueType(s string) (QueueType, error) {
	q := QueueType(s)
	if !q.IsValid() {
		return "", ErrInvalidQueue
	}
	return q, nil
}

// Status tracks the lifecycle of a listing. Only active listings are eligible
// for any exposure queue.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusSold     Status = "sold"
	StatusRejected Status = "rejected"
)

// Terminal reports whether a listing can never be shown again.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusRejected
}

// Item is a listing as seen by the exposure scheduler. Only the columns the
// scheduler reads or writes are mapped; everything else belongs to the
// listing CRUD service.
type Item struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Status         Status     `json:"status"`
	IsPremiumTier  bool       `json:"is_premium_tier"`
	PremiumRank    int        `json:"premium_rank"`
	IsRecommended  bool       `json:"is_recommended"`
	IsBoosted      bool       `json:"is_boosted"`
	PremiumOrder   int64      `json:"premium_order"`
	RecommendOrder int64      `json:"recommend_order"`
	ListingOrder   int64      `json:"listing_order"`
	BoostOrder     int64      `json:"boost_order"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ExposureID identifies the item for deduplication when padding groups.
func (it *Item) ExposureID() int64 { return it.ID }

func (it *Item) Active() bool { return it.Status == StatusActive }

// Eligible reports whether the item belongs to queue q. premiumMaxRank is the
// worst premium rank still shown in the premium panel.
//
// A general listing without an order (0) has not been placed by activation
// yet and stays out of the queue, so it can never surface at the head.
func (it *Item) Eligible(q QueueType, premiumMaxRank int) bool {
	if !it.Active() {
		return false
	}
	switch q {
	case QueuePremium:
		return it.IsPremiumTier && it.PremiumRank <= premiumMaxRank
	case QueueRecommended:
		return it.IsRecommended
	case QueueGeneral:
		return it.ListingOrder > 0
	case QueueBoost:
		return it.IsBoosted
	}
	return false
}

// Activatable reports whether the activation workflow may place the item in
// q. Joining the general queue is what makes a listing active, so any
// non-terminal listing qualifies; the flag queues only take listings that are
// already active, and premium also requires a displayable rank.
func (it *Item) Activatable(q QueueType, premiumMaxRank int) bool {
	switch q {
	case QueueGeneral:
		return !it.Status.Terminal()
	case QueuePremium:
		return it.Active() && it.PremiumRank <= premiumMaxRank
	case QueueRecommended, QueueBoost:
		return it.Active()
	}
	return false
}

// Order returns the item's position in queue q.
func (it *Item) Order(q QueueType) int64 {
	switch q {
	case QueuePremium:
		return it.PremiumOrder
	case QueueRecommended:
		return it.RecommendOrder
	case QueueGeneral:
		return it.ListingOrder
	case QueueBoost:
		return it.BoostOrder
	}
	return 0
}

func (it *Item) SetOrder(q QueueType, order int64) {
	switch q {
	case QueuePremium:
		it.PremiumOrder = order
	case QueueRecommended:
		it.RecommendOrder = order
	case QueueGeneral:
		it.ListingOrder = order
	case QueueBoost:
		it.BoostOrder = order
	}
}

// ActivateRequest is the inbound payload of the activation workflow.
type ActivateRequest struct {
	Queue QueueType `json:"queue"`
}

func (r *ActivateRequest) Validate() error {
	if !r.Queue.IsValid() {
		return ErrInvalidQueue
	}
	return nil
}

// Activation is returned once a listing has joined a queue.
type Activation struct {
	ItemID int64     `json:"item_id"`
	Queue  QueueType `json:"queue"`
	Order  int64     `json:"order"`
}

// HomepagePanels is the homepage assembly's view of the rotated panels.
type HomepagePanels struct {
	Premium     []*Item `json:"premium"`
	Recommended []*Item `json:"recommended"`
}

// FeedBatch is one read of an exposure queue cursor.
type FeedBatch struct {
	Queue   QueueType `json:"queue"`
	Items   []*Item   `json:"items"`
	Rotated bool      `json:"rotated"`
}

// CompactionResult reports one queue's renumbering outcome.
type CompactionResult struct {
	Queue      QueueType `json:"queue"`
	Renumbered int       `json:"renumbered"`
	Error      string    `json:"error,omitempty"`
}
