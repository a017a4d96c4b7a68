// Package state holds the shared entity cache kept in sync from the
// gateway event stream. Reads are concurrent; each top-level map has
// its own lock and each long-lived entity carries a fine-grained lock
// of its own. Lock order is always map first, then entity.
package state

import (
	"sort"
	"sync"

	"github.com/georgemarshall/serenity/internal/model"
)

// Settings tunes the cache. MaxMessages bounds how many messages are
// retained per channel; zero disables message caching entirely.
type Settings struct {
	MaxMessages int
}

// messageCache is one channel's bounded message history: a lookup map
// plus the insertion-ordered id queue that drives eviction.
type messageCache struct {
	byID  map[model.MessageID]*model.Message
	order []model.MessageID
}

// Cache is the shared state graph. Channel cells are referenced both
// from the top-level maps and from their owning guild; user cells are
// the single authoritative record per user id, referenced everywhere a
// user appears.
type Cache struct {
	settings Settings

	guildsMu sync.RWMutex
	guilds   map[model.GuildID]*model.Guild

	unavailableMu     sync.RWMutex
	unavailableGuilds map[model.GuildID]struct{}

	channelsMu sync.RWMutex
	channels   map[model.ChannelID]*model.GuildChannel

	categoriesMu sync.RWMutex
	categories   map[model.ChannelID]*model.ChannelCategory

	groupsMu sync.RWMutex
	groups   map[model.ChannelID]*model.Group

	privateMu       sync.RWMutex
	privateChannels map[model.ChannelID]*model.PrivateChannel

	usersMu sync.RWMutex
	users   map[model.UserID]*model.User

	presencesMu sync.RWMutex
	presences   map[model.UserID]*model.Presence

	messagesMu sync.RWMutex
	messages   map[model.ChannelID]*messageCache

	metaMu      sync.RWMutex
	currentUser model.CurrentUser
	shardCount  uint64
}

// New builds an empty cache with the given settings.
func New(settings Settings) *Cache {
	return &Cache{
		settings:          settings,
		guilds:            make(map[model.GuildID]*model.Guild),
		unavailableGuilds: make(map[model.GuildID]struct{}),
		channels:          make(map[model.ChannelID]*model.GuildChannel),
		categories:        make(map[model.ChannelID]*model.ChannelCategory),
		groups:            make(map[model.ChannelID]*model.Group),
		privateChannels:   make(map[model.ChannelID]*model.PrivateChannel),
		users:             make(map[model.UserID]*model.User),
		presences:         make(map[model.UserID]*model.Presence),
		messages:          make(map[model.ChannelID]*messageCache),
	}
}

// Guild returns the shared guild cell, or nil.
func (c *Cache) Guild(id model.GuildID) *model.Guild {
	c.guildsMu.RLock()
	defer c.guildsMu.RUnlock()
	return c.guilds[id]
}

// GuildIDs returns the cached guild ids in ascending order.
func (c *Cache) GuildIDs() []model.GuildID {
	c.guildsMu.RLock()
	defer c.guildsMu.RUnlock()
	ids := make([]model.GuildID, 0, len(c.guilds))
	for id := range c.guilds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnavailableGuilds returns the ids of guilds currently offline, in
// ascending order.
func (c *Cache) UnavailableGuilds() []model.GuildID {
	c.unavailableMu.RLock()
	defer c.unavailableMu.RUnlock()
	ids := make([]model.GuildID, 0, len(c.unavailableGuilds))
	for id := range c.unavailableGuilds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Channel returns the shared guild-channel cell, or nil. The same cell
// is reachable through the owning guild's channel map.
func (c *Cache) Channel(id model.ChannelID) *model.GuildChannel {
	c.channelsMu.RLock()
	defer c.channelsMu.RUnlock()
	return c.channels[id]
}

// Category returns the shared category cell, or nil.
func (c *Cache) Category(id model.ChannelID) *model.ChannelCategory {
	c.categoriesMu.RLock()
	defer c.categoriesMu.RUnlock()
	return c.categories[id]
}

// Group returns the shared group cell, or nil.
func (c *Cache) Group(id model.ChannelID) *model.Group {
	c.groupsMu.RLock()
	defer c.groupsMu.RUnlock()
	return c.groups[id]
}

// PrivateChannel returns the shared private-channel cell, or nil.
func (c *Cache) PrivateChannel(id model.ChannelID) *model.PrivateChannel {
	c.privateMu.RLock()
	defer c.privateMu.RUnlock()
	return c.privateChannels[id]
}

// User returns the authoritative user cell, or nil.
func (c *Cache) User(id model.UserID) *model.User {
	c.usersMu.RLock()
	defer c.usersMu.RUnlock()
	return c.users[id]
}

// Presence returns the top-level (guild-unscoped) presence for a user.
func (c *Cache) Presence(id model.UserID) *model.Presence {
	c.presencesMu.RLock()
	defer c.presencesMu.RUnlock()
	return c.presences[id]
}

// Message returns a copy of a cached message. Copies keep readers out
// of the way of in-place patches.
func (c *Cache) Message(channelID model.ChannelID, id model.MessageID) (model.Message, bool) {
	c.messagesMu.RLock()
	defer c.messagesMu.RUnlock()
	mc := c.messages[channelID]
	if mc == nil {
		return model.Message{}, false
	}
	m := mc.byID[id]
	if m == nil {
		return model.Message{}, false
	}
	return *m, true
}

// MessageCount reports how many messages are cached for a channel.
func (c *Cache) MessageCount(channelID model.ChannelID) int {
	c.messagesMu.RLock()
	defer c.messagesMu.RUnlock()
	mc := c.messages[channelID]
	if mc == nil {
		return 0
	}
	return len(mc.order)
}

// CurrentUser returns a copy of the logged-in user's record.
func (c *Cache) CurrentUser() model.CurrentUser {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return c.currentUser
}

// ShardCount returns the shard count announced by the last READY.
func (c *Cache) ShardCount() uint64 {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return c.shardCount
}

// updateUserEntry is the single writer path into the user table: it
// folds incoming user data into the authoritative cell for that id,
// creating the cell on first sight, and returns the cell. Every event
// that attaches a user elsewhere must route through here first so no
// private copy of a user ever escapes into the graph.
func (c *Cache) updateUserEntry(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c.usersMu.Lock()
	defer c.usersMu.Unlock()
	existing := c.users[u.ID]
	if existing == nil {
		c.users[u.ID] = u
		return u
	}
	if existing != u {
		existing.Mu.Lock()
		existing.Avatar = u.Avatar
		existing.Bot = u.Bot
		existing.Discriminator = u.Discriminator
		existing.Name = u.Name
		existing.Mu.Unlock()
	}
	return existing
}

// lookupUser returns the authoritative cell without creating one.
func (c *Cache) lookupUser(id model.UserID) *model.User {
	c.usersMu.RLock()
	defer c.usersMu.RUnlock()
	return c.users[id]
}
