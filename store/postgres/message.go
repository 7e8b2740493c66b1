package postgres

import (
	"context"
	"encoding/json"
	"time"

	"emperror.dev/errors"
	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// DefaultChannelLimit is the number of messages returned by ChannelMessages if no limit is given.
const DefaultChannelLimit = 50

type messageRow struct {
	ID        int64
	ChannelID int64
	Data      []byte
	DeletedAt *time.Time
}

func (r messageRow) message() (m discord.Message, err error) {
	err = json.Unmarshal(r.Data, &m)
	return m, errors.Wrapf(err, "decoding message %d", r.ID)
}

var messageColumns = []string{"id", "channel_id", "data", "deleted_at"}

// Message returns a message that hasn't been removed.
func (s *Store) Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (discord.Message, error) {
	return s.get(ctx, channelID, messageID, false)
}

// Deleted returns a removed message, along with when it was removed.
func (s *Store) Deleted(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (discord.Message, time.Time, error) {
	var row messageRow
	err := s.getRow(ctx, &row, channelID, messageID, true)
	if err != nil {
		return discord.Message{}, time.Time{}, err
	}

	m, err := row.message()
	if err != nil {
		return m, time.Time{}, err
	}
	return m, *row.DeletedAt, nil
}

func (s *Store) get(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, deleted bool) (discord.Message, error) {
	var row messageRow
	if err := s.getRow(ctx, &row, channelID, messageID, deleted); err != nil {
		return discord.Message{}, err
	}
	return row.message()
}

func (s *Store) getRow(ctx context.Context, row *messageRow, channelID discord.ChannelID, messageID discord.MessageID, deleted bool) error {
	q := sq.Select(messageColumns...).From("messages").
		Where(squirrel.Eq{"id": int64(messageID), "channel_id": int64(channelID)})
	if deleted {
		q = q.Where("deleted_at is not null")
	} else {
		q = q.Where("deleted_at is null")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	err = pgxscan.Get(ctx, s.pool, row, sql, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return store.ErrNotFound
		}
		return errors.Wrap(err, "getting message")
	}
	return nil
}

// ChannelMessages returns up to limit archived messages in a channel, newest first.
// If before is valid, only messages older than it are returned.
func (s *Store) ChannelMessages(ctx context.Context, channelID discord.ChannelID, before discord.MessageID, limit int) ([]discord.Message, error) {
	if limit <= 0 {
		limit = DefaultChannelLimit
	}

	q := sq.Select(messageColumns...).From("messages").
		Where(squirrel.Eq{"channel_id": int64(channelID)}).
		Where("deleted_at is null").
		OrderBy("id desc").
		Limit(uint64(limit))
	if before.IsValid() {
		q = q.Where(squirrel.Lt{"id": int64(before)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []messageRow
	err = pgxscan.Select(ctx, s.pool, &rows, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "getting messages")
	}

	msgs := make([]discord.Message, 0, len(rows))
	for _, row := range rows {
		m, err := row.message()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// SetMessage archives a message, replacing any earlier version.
// Setting a removed message restores it.
func (s *Store) SetMessage(ctx context.Context, m discord.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "encoding message")
	}

	var guildID *int64
	if m.GuildID.IsValid() {
		id := int64(m.GuildID)
		guildID = &id
	}

	sql, args, err := sq.Insert("messages").
		Columns("id", "channel_id", "guild_id", "author_id", "content", "data", "created_at").
		Values(int64(m.ID), int64(m.ChannelID), guildID, int64(m.Author.ID), m.Content, b, m.ID.Time()).
		Suffix(`on conflict (id) do update set
content = excluded.content, data = excluded.data, updated_at = now(), deleted_at = null`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	_, err = s.pool.Exec(ctx, sql, args...)
	return errors.Wrap(err, "inserting message")
}

// RemoveMessages marks messages as deleted. They're kept, and can be read with Deleted.
func (s *Store) RemoveMessages(ctx context.Context, channelID discord.ChannelID, ids ...discord.MessageID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	sql, args, err := sq.Update("messages").
		Set("deleted_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"channel_id": int64(channelID), "id": raw}).
		Where("deleted_at is null").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	ct, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "deleting messages")
	}

	s.log.Debugf("Marked %d message(s) in %v as deleted", ct.RowsAffected(), channelID)
	return nil
}

// Purge permanently removes messages deleted before the given time, and returns how many were removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	sql, args, err := sq.Delete("messages").
		Where(squirrel.Lt{"deleted_at": olderThan}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}

	ct, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Wrap(err, "purging messages")
	}
	return ct.RowsAffected(), nil
}
