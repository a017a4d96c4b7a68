package state

import (
	"github.com/georgemarshall/serenity/internal/gateway"
	"github.com/georgemarshall/serenity/internal/metrics"
	"github.com/georgemarshall/serenity/internal/model"
)

// Update applies one decoded event to the cache and returns the prior
// or affected value where one is meaningful to the caller (the evicted
// message, the pre-patch message, the removed guild, and so on), or
// nil. Update never fails: events referencing entities the cache does
// not hold are no-ops.
func (c *Cache) Update(ev gateway.Event) interface{} {
	metrics.EventsApplied.WithLabelValues(string(ev.EventType())).Inc()

	switch e := ev.(type) {
	case *gateway.ChannelCreateEvent:
		return c.applyChannelUpsert(&e.Channel)
	case *gateway.ChannelUpdateEvent:
		return c.applyChannelUpsert(&e.Channel)
	case *gateway.ChannelDeleteEvent:
		return c.applyChannelDelete(&e.Channel)
	case *gateway.ChannelPinsUpdateEvent:
		c.applyChannelPinsUpdate(e)
	case *gateway.ChannelRecipientAddEvent:
		c.applyChannelRecipientAdd(e)
	case *gateway.ChannelRecipientRemoveEvent:
		c.applyChannelRecipientRemove(e)
	case *gateway.GuildCreateEvent:
		c.registerGuild(e.Guild)
	case *gateway.GuildDeleteEvent:
		return c.applyGuildDelete(e.Guild.ID)
	case *gateway.GuildUnavailableEvent:
		c.markGuildUnavailable(e.GuildID)
	case *gateway.GuildUpdateEvent:
		c.applyGuildUpdate(&e.Guild)
	case *gateway.GuildEmojisUpdateEvent:
		if g := c.Guild(e.GuildID); g != nil {
			g.Mu.Lock()
			g.Emojis = e.Emojis
			g.Mu.Unlock()
		}
	case *gateway.GuildMemberAddEvent:
		c.applyGuildMemberAdd(e)
	case *gateway.GuildMemberRemoveEvent:
		return c.applyGuildMemberRemove(e)
	case *gateway.GuildMemberUpdateEvent:
		return c.applyGuildMemberUpdate(e)
	case *gateway.GuildMembersChunkEvent:
		c.applyGuildMembersChunk(e)
	case *gateway.GuildRoleCreateEvent:
		c.applyGuildRoleUpsert(e.GuildID, e.Role)
	case *gateway.GuildRoleUpdateEvent:
		return c.applyGuildRoleUpsert(e.GuildID, e.Role)
	case *gateway.GuildRoleDeleteEvent:
		return c.applyGuildRoleDelete(e)
	case *gateway.MessageCreateEvent:
		return c.applyMessageCreate(e.Message)
	case *gateway.MessageUpdateEvent:
		return c.applyMessageUpdate(e)
	case *gateway.PresenceUpdateEvent:
		c.applyPresenceUpdate(e)
	case *gateway.PresencesReplaceEvent:
		c.applyPresencesReplace(e.Presences)
	case *gateway.ReadyEvent:
		c.applyReady(&e.Ready)
	case *gateway.UserUpdateEvent:
		c.metaMu.Lock()
		old := c.currentUser
		c.currentUser = e.CurrentUser
		c.metaMu.Unlock()
		return old
	case *gateway.VoiceStateUpdateEvent:
		c.applyVoiceStateUpdate(e)
	}
	// Everything else (message deletes, reactions, typing, bans,
	// webhooks, resume acks) carries nothing the cache retains.
	return nil
}

// registerGuild folds a full guild into the cache: member and presence
// users are resolved to their authoritative cells, the guild's channel
// cells are mirrored into the top-level channel map, and any
// unavailable marker is cleared.
func (c *Cache) registerGuild(g *model.Guild) {
	if g == nil {
		return
	}
	for _, m := range g.Members {
		m.User = c.updateUserEntry(m.User)
	}
	for _, p := range g.Presences {
		if p.User != nil {
			p.User = c.updateUserEntry(p.User)
		}
	}

	c.unavailableMu.Lock()
	delete(c.unavailableGuilds, g.ID)
	c.unavailableMu.Unlock()

	c.channelsMu.Lock()
	for id, ch := range g.Channels {
		c.channels[id] = ch
	}
	c.channelsMu.Unlock()

	c.guildsMu.Lock()
	c.guilds[g.ID] = g
	c.guildsMu.Unlock()
}

// markGuildUnavailable moves a guild to the unavailable set. The guild
// record leaves the online map so lookups stop serving it.
func (c *Cache) markGuildUnavailable(id model.GuildID) {
	c.unavailableMu.Lock()
	c.unavailableGuilds[id] = struct{}{}
	c.unavailableMu.Unlock()

	c.guildsMu.Lock()
	delete(c.guilds, id)
	c.guildsMu.Unlock()
}

func (c *Cache) applyGuildDelete(id model.GuildID) interface{} {
	c.unavailableMu.Lock()
	delete(c.unavailableGuilds, id)
	c.unavailableMu.Unlock()

	c.guildsMu.Lock()
	g := c.guilds[id]
	delete(c.guilds, id)
	c.guildsMu.Unlock()
	if g == nil {
		return nil
	}

	g.Mu.RLock()
	channelIDs := make([]model.ChannelID, 0, len(g.Channels))
	for chID := range g.Channels {
		channelIDs = append(channelIDs, chID)
	}
	g.Mu.RUnlock()

	c.channelsMu.Lock()
	for _, chID := range channelIDs {
		delete(c.channels, chID)
	}
	c.channelsMu.Unlock()

	c.messagesMu.Lock()
	for _, chID := range channelIDs {
		delete(c.messages, chID)
	}
	c.messagesMu.Unlock()

	return g
}

func (c *Cache) applyGuildUpdate(pg *model.PartialGuild) {
	g := c.Guild(pg.ID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.AFKChannelID = pg.AFKChannelID
	g.AFKTimeout = pg.AFKTimeout
	g.DefaultMessageNotifications = pg.DefaultMessageNotifications
	g.Features = pg.Features
	g.Icon = pg.Icon
	g.MFALevel = pg.MFALevel
	g.Name = pg.Name
	g.OwnerID = pg.OwnerID
	g.Region = pg.Region
	g.Splash = pg.Splash
	g.VerificationLevel = pg.VerificationLevel
	if pg.Emojis != nil {
		g.Emojis = pg.Emojis
	}
	if pg.Roles != nil {
		g.Roles = pg.Roles
	}
}

// applyChannelUpsert folds one channel of any kind into the cache,
// reusing the existing shared cell when there is one. When a cell was
// replaced, a detached snapshot of its pre-update state comes back;
// nil means the channel was new.
func (c *Cache) applyChannelUpsert(ch *model.Channel) interface{} {
	switch {
	case ch.Guild != nil:
		src := ch.Guild
		c.channelsMu.Lock()
		cell := c.channels[src.ID]
		if cell == nil {
			cell = src
			c.channels[src.ID] = cell
		}
		c.channelsMu.Unlock()
		var prev *model.GuildChannel
		if cell != src {
			prev = new(model.GuildChannel)
			cell.Mu.Lock()
			prev.CopyFrom(cell)
			cell.CopyFrom(src)
			cell.Mu.Unlock()
		}
		if g := c.Guild(cell.GuildID); g != nil {
			g.Mu.Lock()
			if g.Channels == nil {
				g.Channels = model.ChannelMap{}
			}
			g.Channels[cell.ID] = cell
			g.Mu.Unlock()
		}
		if prev == nil {
			return nil
		}
		return prev
	case ch.Private != nil:
		src := ch.Private
		src.Recipient = c.updateUserEntry(src.Recipient)
		c.privateMu.Lock()
		cell := c.privateChannels[src.ID]
		if cell == nil {
			c.privateChannels[src.ID] = src
		}
		c.privateMu.Unlock()
		if cell == nil || cell == src {
			return nil
		}
		prev := new(model.PrivateChannel)
		cell.Mu.Lock()
		prev.CopyFrom(cell)
		cell.CopyFrom(src)
		cell.Mu.Unlock()
		return prev
	case ch.Group != nil:
		src := ch.Group
		for id, u := range src.Recipients {
			src.Recipients[id] = c.updateUserEntry(u)
		}
		c.groupsMu.Lock()
		cell := c.groups[src.ChannelID]
		if cell == nil {
			c.groups[src.ChannelID] = src
		}
		c.groupsMu.Unlock()
		if cell == nil || cell == src {
			return nil
		}
		prev := new(model.Group)
		cell.Mu.Lock()
		prev.CopyFrom(cell)
		prev.Recipients = make(model.UserMap, len(cell.Recipients))
		for id, u := range cell.Recipients {
			prev.Recipients[id] = u
		}
		cell.CopyFrom(src)
		if cell.Recipients == nil {
			cell.Recipients = model.UserMap{}
		}
		for id, u := range src.Recipients {
			cell.Recipients[id] = u
		}
		cell.Mu.Unlock()
		return prev
	case ch.Category != nil:
		src := ch.Category
		c.categoriesMu.Lock()
		cell := c.categories[src.ID]
		if cell == nil {
			c.categories[src.ID] = src
		}
		c.categoriesMu.Unlock()
		if cell == nil || cell == src {
			return nil
		}
		prev := new(model.ChannelCategory)
		cell.Mu.Lock()
		prev.CopyFrom(cell)
		cell.CopyFrom(src)
		cell.Mu.Unlock()
		return prev
	}
	return nil
}

func (c *Cache) applyChannelDelete(ch *model.Channel) interface{} {
	id := ch.ID()

	c.messagesMu.Lock()
	delete(c.messages, id)
	c.messagesMu.Unlock()

	switch {
	case ch.Guild != nil:
		c.channelsMu.Lock()
		removed := c.channels[id]
		delete(c.channels, id)
		c.channelsMu.Unlock()
		if removed == nil {
			return nil
		}
		if g := c.Guild(removed.GuildID); g != nil {
			g.Mu.Lock()
			delete(g.Channels, id)
			g.Mu.Unlock()
		}
		return removed
	case ch.Private != nil:
		c.privateMu.Lock()
		removed := c.privateChannels[id]
		delete(c.privateChannels, id)
		c.privateMu.Unlock()
		if removed == nil {
			return nil
		}
		return removed
	case ch.Group != nil:
		c.groupsMu.Lock()
		removed := c.groups[id]
		delete(c.groups, id)
		c.groupsMu.Unlock()
		if removed == nil {
			return nil
		}
		return removed
	case ch.Category != nil:
		c.categoriesMu.Lock()
		removed := c.categories[id]
		delete(c.categories, id)
		c.categoriesMu.Unlock()
		if removed == nil {
			return nil
		}
		return removed
	}
	return nil
}

func (c *Cache) applyChannelPinsUpdate(e *gateway.ChannelPinsUpdateEvent) {
	if ch := c.Channel(e.ChannelID); ch != nil {
		ch.Mu.Lock()
		ch.LastPinTimestamp = e.LastPinTimestamp
		ch.Mu.Unlock()
		return
	}
	if p := c.PrivateChannel(e.ChannelID); p != nil {
		p.Mu.Lock()
		p.LastPinTimestamp = e.LastPinTimestamp
		p.Mu.Unlock()
		return
	}
	if g := c.Group(e.ChannelID); g != nil {
		g.Mu.Lock()
		g.LastPinTimestamp = e.LastPinTimestamp
		g.Mu.Unlock()
	}
}

func (c *Cache) applyChannelRecipientAdd(e *gateway.ChannelRecipientAddEvent) {
	cell := c.updateUserEntry(e.User)
	if cell == nil {
		return
	}
	g := c.Group(e.ChannelID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	if g.Recipients == nil {
		g.Recipients = model.UserMap{}
	}
	g.Recipients[cell.ID] = cell
	g.Mu.Unlock()
}

func (c *Cache) applyChannelRecipientRemove(e *gateway.ChannelRecipientRemoveEvent) {
	if e.User == nil {
		return
	}
	g := c.Group(e.ChannelID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	delete(g.Recipients, e.User.ID)
	g.Mu.Unlock()
}

func (c *Cache) applyGuildMemberAdd(e *gateway.GuildMemberAddEvent) {
	cell := c.updateUserEntry(e.Member.User)
	if cell == nil {
		return
	}
	g := c.Guild(e.GuildID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.MemberCount++
	m := e.Member
	m.GuildID = e.GuildID
	m.User = cell
	if g.Members == nil {
		g.Members = model.MemberMap{}
	}
	g.Members[cell.ID] = &m
}

func (c *Cache) applyGuildMemberRemove(e *gateway.GuildMemberRemoveEvent) interface{} {
	if e.User == nil {
		return nil
	}
	g := c.Guild(e.GuildID)
	if g == nil {
		return nil
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	m := g.Members[e.User.ID]
	if m == nil {
		return nil
	}
	g.MemberCount--
	delete(g.Members, e.User.ID)
	return *m
}

// applyGuildMemberUpdate overwrites the member's mutable fields in
// place and returns the pre-update copy; an unknown member is
// synthesized instead, with deaf/mute/joined-at left at their unknown
// defaults.
func (c *Cache) applyGuildMemberUpdate(e *gateway.GuildMemberUpdateEvent) interface{} {
	cell := c.updateUserEntry(e.User)
	if cell == nil {
		return nil
	}
	g := c.Guild(e.GuildID)
	if g == nil {
		return nil
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if m := g.Members[cell.ID]; m != nil {
		pre := *m
		m.Nick = e.Nick
		m.Roles = e.Roles
		m.User = cell
		return pre
	}
	if g.Members == nil {
		g.Members = model.MemberMap{}
	}
	g.Members[cell.ID] = &model.Member{
		GuildID: e.GuildID,
		Nick:    e.Nick,
		Roles:   e.Roles,
		User:    cell,
	}
	return nil
}

func (c *Cache) applyGuildMembersChunk(e *gateway.GuildMembersChunkEvent) {
	g := c.Guild(e.GuildID)
	if g == nil {
		return
	}
	for _, m := range e.Members {
		m.User = c.updateUserEntry(m.User)
		if m.User == nil {
			continue
		}
		g.Mu.Lock()
		if g.Members == nil {
			g.Members = model.MemberMap{}
		}
		g.Members[m.User.ID] = &m
		g.Mu.Unlock()
	}
}

func (c *Cache) applyGuildRoleUpsert(guildID model.GuildID, role model.Role) interface{} {
	g := c.Guild(guildID)
	if g == nil {
		return nil
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	var old interface{}
	if prev := g.Roles[role.ID]; prev != nil {
		old = *prev
	}
	if g.Roles == nil {
		g.Roles = model.RoleMap{}
	}
	g.Roles[role.ID] = &role
	return old
}

func (c *Cache) applyGuildRoleDelete(e *gateway.GuildRoleDeleteEvent) interface{} {
	g := c.Guild(e.GuildID)
	if g == nil {
		return nil
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	removed := g.Roles[e.RoleID]
	if removed == nil {
		return nil
	}
	delete(g.Roles, e.RoleID)
	return *removed
}

// applyMessageCreate is the bounded insert: at capacity the oldest id
// is popped and its message evicted before the new one goes in. With
// MaxMessages zero nothing is ever inserted or tracked.
func (c *Cache) applyMessageCreate(msg model.Message) interface{} {
	if c.settings.MaxMessages == 0 {
		return nil
	}
	c.messagesMu.Lock()
	defer c.messagesMu.Unlock()

	mc := c.messages[msg.ChannelID]
	if mc == nil {
		mc = &messageCache{byID: make(map[model.MessageID]*model.Message)}
		c.messages[msg.ChannelID] = mc
	}
	if _, exists := mc.byID[msg.ID]; exists {
		mc.byID[msg.ID] = &msg
		return nil
	}

	var evicted *model.Message
	if len(mc.order) >= c.settings.MaxMessages {
		oldest := mc.order[0]
		mc.order = mc.order[1:]
		evicted = mc.byID[oldest]
		delete(mc.byID, oldest)
		metrics.MessagesEvicted.Inc()
	}
	mc.byID[msg.ID] = &msg
	mc.order = append(mc.order, msg.ID)

	if evicted == nil {
		return nil
	}
	return *evicted
}

// applyMessageUpdate patches only the fields the event carried and
// returns the message's state before the patch.
func (c *Cache) applyMessageUpdate(e *gateway.MessageUpdateEvent) interface{} {
	c.messagesMu.Lock()
	defer c.messagesMu.Unlock()

	mc := c.messages[e.ChannelID]
	if mc == nil {
		return nil
	}
	m := mc.byID[e.ID]
	if m == nil {
		return nil
	}
	pre := *m

	if e.Kind != nil {
		m.Kind = *e.Kind
	}
	if e.Content != nil {
		m.Content = *e.Content
	}
	if e.Nonce != nil {
		m.Nonce = e.Nonce
	}
	if e.TTS != nil {
		m.TTS = *e.TTS
	}
	if e.Pinned != nil {
		m.Pinned = *e.Pinned
	}
	if e.Timestamp != nil {
		m.Timestamp = *e.Timestamp
	}
	if e.EditedTimestamp != nil {
		m.EditedTimestamp = e.EditedTimestamp
	}
	if e.Author != nil {
		m.Author = e.Author
	}
	if e.MentionEveryone != nil {
		m.MentionEveryone = *e.MentionEveryone
	}
	if e.Mentions != nil {
		m.Mentions = e.Mentions
	}
	if e.MentionRoles != nil {
		m.MentionRoles = e.MentionRoles
	}
	if e.Attachments != nil {
		m.Attachments = e.Attachments
	}
	if e.Embeds != nil {
		m.Embeds = e.Embeds
	}
	return pre
}

// applyPresenceUpdate upserts or, on "offline", removes the presence.
// Guild-scoped updates may synthesize a minimal member record when the
// presence carries a full user the guild has not seen yet.
func (c *Cache) applyPresenceUpdate(e *gateway.PresenceUpdateEvent) {
	p := e.Presence
	if p.User != nil {
		p.User = c.updateUserEntry(p.User)
	}

	if e.GuildID == nil {
		c.presencesMu.Lock()
		defer c.presencesMu.Unlock()
		if p.Status == model.StatusOffline {
			delete(c.presences, p.UserID)
			return
		}
		c.presences[p.UserID] = &p
		return
	}

	g := c.Guild(*e.GuildID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if p.Status == model.StatusOffline {
		delete(g.Presences, p.UserID)
	} else {
		if g.Presences == nil {
			g.Presences = model.PresenceMap{}
		}
		g.Presences[p.UserID] = &p
	}
	if _, known := g.Members[p.UserID]; !known && p.User != nil {
		if g.Members == nil {
			g.Members = model.MemberMap{}
		}
		g.Members[p.UserID] = &model.Member{
			GuildID: g.ID,
			Nick:    p.Nick,
			Roles:   e.Roles,
			User:    p.User,
		}
	}
}

// applyPresencesReplace folds the list into the existing presence map.
// Users absent from the list keep whatever presence the cache already
// held for them.
func (c *Cache) applyPresencesReplace(list []model.Presence) {
	for i := range list {
		p := &list[i]
		if p.User != nil {
			p.User = c.updateUserEntry(p.User)
		} else {
			p.User = c.lookupUser(p.UserID)
		}
	}
	c.presencesMu.Lock()
	for i := range list {
		p := list[i]
		c.presences[p.UserID] = &p
	}
	c.presencesMu.Unlock()
}

// applyReady is the authoritative resync: guild list reclassified,
// presences folded with user-table resolution, private channels
// re-registered, shard count and current user replaced wholesale.
func (c *Cache) applyReady(r *model.Ready) {
	for _, gs := range r.Guilds {
		switch {
		case gs.Offline != nil:
			c.markGuildUnavailable(gs.Offline.ID)
		case gs.Online != nil:
			c.registerGuild(gs.Online)
		}
	}

	for _, p := range r.Presences {
		if p.User != nil {
			p.User = c.updateUserEntry(p.User)
		} else {
			p.User = c.lookupUser(p.UserID)
		}
	}
	c.presencesMu.Lock()
	for id, p := range r.Presences {
		c.presences[id] = p
	}
	c.presencesMu.Unlock()

	for _, pch := range r.PrivateChannels {
		pch.Recipient = c.updateUserEntry(pch.Recipient)
		c.privateMu.Lock()
		c.privateChannels[pch.ID] = pch
		c.privateMu.Unlock()
	}

	shardCount := uint64(1)
	if r.Shard != nil {
		shardCount = r.Shard[1]
	}
	c.metaMu.Lock()
	c.currentUser = r.User
	c.shardCount = shardCount
	c.metaMu.Unlock()
}

func (c *Cache) applyVoiceStateUpdate(e *gateway.VoiceStateUpdateEvent) {
	if e.GuildID == nil {
		return
	}
	g := c.Guild(*e.GuildID)
	if g == nil {
		return
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	vs := e.VoiceState
	if vs.ChannelID == nil {
		delete(g.VoiceStates, vs.UserID)
		return
	}
	if g.VoiceStates == nil {
		g.VoiceStates = model.VoiceStateMap{}
	}
	g.VoiceStates[vs.UserID] = &vs
}
