package chathub

// Groups is a set of named broadcast groups. A room's id is also the name of
// the group its connected members are subscribed to.
type Groups struct {
	groups map[string]map[string]Transport
}

func NewGroups() *Groups {
	return &Groups{groups: make(map[string]map[string]Transport)}
}

// Join subscribes the member's transport to group, replacing any previous one.
func (g *Groups) Join(group, memberID string, t Transport) {
	members, ok := g.groups[group]
	if !ok {
		members = make(map[string]Transport)
		g.groups[group] = members
	}
	members[memberID] = t
}

func (g *Groups) Leave(group, memberID string) {
	members, ok := g.groups[group]
	if !ok {
		return
	}
	delete(members, memberID)
	if len(members) == 0 {
		delete(g.groups, group)
	}
}

func (g *Groups) Size(group string) int {
	return len(g.groups[group])
}

// Broadcast emits event to every member of group. dataFor builds the payload
// for each member so recipients can get individual views.
func (g *Groups) Broadcast(group, event string, dataFor func(memberID string) any) {
	for id, t := range g.groups[group] {
		t.Emit(event, dataFor(id))
	}
}
