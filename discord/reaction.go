package discord

import (
	"encoding/json"
	"sort"
)

// Reaction is a single entry in a message's reactions array, as Discord sends it.
type Reaction struct {
	Count int   `json:"count"`
	Me    bool  `json:"me"`
	Emoji Emoji `json:"emoji"`
}

// ReactionLine is every reaction with a single emoji on a message.
//
// Users holds the users known to have reacted, sorted by ID.
// Unknown is the number of reactors that haven't been fetched yet.
// Me is true if the current user reacted. Until the mapping is bound, the current user is counted in Unknown.
type ReactionLine struct {
	Emoji   Emoji
	Users   []UserID
	Unknown int
	Me      bool
}

// Count returns the total number of reactions on this line.
func (l ReactionLine) Count() int {
	return len(l.Users) + l.Unknown
}

// FullyLoaded returns true if every reactor on this line is known.
func (l ReactionLine) FullyLoaded() bool {
	return l.Unknown == 0
}

// Has returns true if the user is known to have reacted.
func (l ReactionLine) Has(id UserID) bool {
	_, ok := l.index(id)
	return ok
}

func (l ReactionLine) index(id UserID) (int, bool) {
	i := sort.Search(len(l.Users), func(i int) bool { return l.Users[i] >= id })
	return i, i < len(l.Users) && l.Users[i] == id
}

func (l *ReactionLine) insert(id UserID) bool {
	i, ok := l.index(id)
	if ok {
		return false
	}
	l.Users = append(l.Users, 0)
	copy(l.Users[i+1:], l.Users[i:])
	l.Users[i] = id
	return true
}

func (l *ReactionLine) remove(id UserID) bool {
	i, ok := l.index(id)
	if !ok {
		return false
	}
	l.Users = append(l.Users[:i], l.Users[i+1:]...)
	return true
}

func (l ReactionLine) clone() ReactionLine {
	l.Users = append([]UserID(nil), l.Users...)
	return l
}

// ReactionMapping tracks the reactions on a single message.
//
// Discord only sends counts with a message, so every reactor starts out unknown.
// As reactors are fetched or reactions are added and removed, users move from the unknown count to the known users.
// The zero value is an empty mapping. A ReactionMapping is not safe for concurrent use.
type ReactionMapping struct {
	lines map[string]*ReactionLine
	order []string

	self UserID
}

// NewReactionMapping creates a mapping from a message's reactions array.
func NewReactionMapping(reactions []Reaction) ReactionMapping {
	var m ReactionMapping
	m.Update(reactions)
	return m
}

func (m *ReactionMapping) line(e Emoji, create bool) *ReactionLine {
	key := e.Key()
	if l, ok := m.lines[key]; ok {
		return l
	}
	if !create {
		return nil
	}

	if m.lines == nil {
		m.lines = make(map[string]*ReactionLine)
	}
	l := &ReactionLine{Emoji: e}
	m.lines[key] = l
	m.order = append(m.order, key)
	return l
}

func (m *ReactionMapping) drop(key string) (ReactionLine, bool) {
	l, ok := m.lines[key]
	if !ok {
		return ReactionLine{}, false
	}

	delete(m.lines, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return *l, true
}

// Self returns the user ID the mapping is bound to.
func (m ReactionMapping) Self() UserID {
	return m.self
}

// Bind sets the current user's ID.
// On lines where Discord reported the current user as a reactor, the current user moves from unknown to known.
func (m *ReactionMapping) Bind(self UserID) {
	m.self = self
	if !self.IsValid() {
		return
	}

	for _, l := range m.lines {
		if l.Me && !l.Has(self) && l.Unknown > 0 {
			l.insert(self)
			l.Unknown--
		}
	}
}

// Update reconciles the mapping against a fresh reactions array.
//
// Known users are kept as long as they fit in the new count.
// If the new count is lower than the number of known users, there's no way to tell who left,
// so every known user other than the current user becomes unknown again.
// Lines missing from reactions are removed.
func (m *ReactionMapping) Update(reactions []Reaction) {
	old := m.lines
	m.lines = make(map[string]*ReactionLine, len(reactions))
	m.order = m.order[:0]

	for _, r := range reactions {
		if r.Count <= 0 {
			continue
		}

		l := m.line(r.Emoji, true)
		l.Me = r.Me

		var known []UserID
		if prev, ok := old[r.Emoji.Key()]; ok {
			known = prev.Users
		}

		selfKnown := m.self.IsValid() && r.Me
		if selfKnown {
			l.insert(m.self)
		}

		others := make([]UserID, 0, len(known))
		for _, u := range known {
			if u != m.self {
				others = append(others, u)
			}
		}
		if len(others)+len(l.Users) <= r.Count {
			for _, u := range others {
				l.insert(u)
			}
		}

		if len(l.Users) > r.Count {
			l.Users = l.Users[:0]
			if selfKnown {
				l.insert(m.self)
			}
		}
		l.Unknown = r.Count - len(l.Users)
	}
}

// Add records a reaction by a user, creating the line if needed.
// Adding a reaction the user already has is a no-op.
func (m *ReactionMapping) Add(e Emoji, user UserID) {
	l := m.line(e, true)
	if !l.insert(user) {
		return
	}
	if m.self.IsValid() && user == m.self {
		l.Me = true
	}
}

// Remove removes a user's reaction.
// If the user isn't known, one unknown reactor is removed instead.
// The line is deleted once it's empty.
func (m *ReactionMapping) Remove(e Emoji, user UserID) {
	l := m.line(e, false)
	if l == nil {
		return
	}

	if !l.remove(user) && l.Unknown > 0 {
		l.Unknown--
	}
	if m.self.IsValid() && user == m.self {
		l.Me = false
	}

	if l.Count() == 0 {
		m.drop(e.Key())
	}
}

// RemoveEmoji removes every reaction with the given emoji, and returns the removed line.
func (m *ReactionMapping) RemoveEmoji(e Emoji) (ReactionLine, bool) {
	return m.drop(e.Key())
}

// Clear removes all reactions.
func (m *ReactionMapping) Clear() {
	m.lines = nil
	m.order = nil
}

// FillSome merges a page of reactors fetched for an emoji.
// If fewer users than limit were returned, the page was the last one, and the line is fully loaded.
func (m *ReactionMapping) FillSome(e Emoji, users []UserID, limit int) {
	l := m.line(e, true)
	for _, u := range users {
		if l.insert(u) && l.Unknown > 0 {
			l.Unknown--
		}
		if m.self.IsValid() && u == m.self {
			l.Me = true
		}
	}

	if len(users) < limit {
		l.Unknown = 0
	}
	if l.Count() == 0 {
		m.drop(e.Key())
	}
}

// FillAll replaces the reactors for an emoji with a complete list.
func (m *ReactionMapping) FillAll(e Emoji, users []UserID) {
	if len(users) == 0 {
		m.drop(e.Key())
		return
	}

	l := m.line(e, true)
	l.Users = make([]UserID, 0, len(users))
	l.Me = false
	for _, u := range users {
		l.insert(u)
		if m.self.IsValid() && u == m.self {
			l.Me = true
		}
	}
	l.Unknown = 0
}

// Count returns the number of reactions with the given emoji.
func (m ReactionMapping) Count(e Emoji) int {
	if l, ok := m.lines[e.Key()]; ok {
		return l.Count()
	}
	return 0
}

// Line returns the reaction line for an emoji.
func (m ReactionMapping) Line(e Emoji) (ReactionLine, bool) {
	l, ok := m.lines[e.Key()]
	if !ok {
		return ReactionLine{}, false
	}
	return l.clone(), true
}

// Lines returns every reaction line, in the order the emojis were first seen.
func (m ReactionMapping) Lines() []ReactionLine {
	lines := make([]ReactionLine, 0, len(m.order))
	for _, key := range m.order {
		lines = append(lines, m.lines[key].clone())
	}
	return lines
}

// EmojiCount returns the number of distinct emojis reacted with.
func (m ReactionMapping) EmojiCount() int {
	return len(m.lines)
}

// TotalCount returns the total number of reactions on the message.
func (m ReactionMapping) TotalCount() int {
	n := 0
	for _, l := range m.lines {
		n += l.Count()
	}
	return n
}

// FullyLoaded returns true if every reactor on the message is known.
func (m ReactionMapping) FullyLoaded() bool {
	for _, l := range m.lines {
		if !l.FullyLoaded() {
			return false
		}
	}
	return true
}

// Reacted returns true if the user is known to have reacted with the emoji.
func (m ReactionMapping) Reacted(e Emoji, user UserID) bool {
	l, ok := m.lines[e.Key()]
	return ok && l.Has(user)
}

// Clone returns a deep copy of the mapping.
func (m ReactionMapping) Clone() ReactionMapping {
	c := ReactionMapping{self: m.self}
	if m.lines != nil {
		c.lines = make(map[string]*ReactionLine, len(m.lines))
		for k, l := range m.lines {
			cl := l.clone()
			c.lines[k] = &cl
		}
	}
	c.order = append([]string(nil), m.order...)
	return c
}

// Reactions returns the mapping in Discord's reactions array form.
func (m ReactionMapping) Reactions() []Reaction {
	rs := make([]Reaction, 0, len(m.order))
	for _, key := range m.order {
		l := m.lines[key]
		rs = append(rs, Reaction{
			Count: l.Count(),
			Me:    l.Me,
			Emoji: l.Emoji,
		})
	}
	return rs
}

func (m ReactionMapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Reactions())
}

func (m *ReactionMapping) UnmarshalJSON(b []byte) error {
	var rs []Reaction
	if err := json.Unmarshal(b, &rs); err != nil {
		return err
	}
	m.Update(rs)
	return nil
}
