package postgres

import (
	"context"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/repository"
	"github.com/cwrk-planet/chat-service/internal/repository/queries"

	"github.com/jackc/pgx/v5"
)

type ChannelRepo struct {
	q querier
}

var _ repository.ChannelRepository = (*ChannelRepo)(nil)

func scanChannel(row pgx.Row) (domain.Channel, error) {
	var c domain.Channel
	err := row.Scan(&c.ID, &c.Name, &c.Owner.ID, &c.Owner.Name, &c.IsPublic, &c.CreatedAt)
	return c, err
}

func (r *ChannelRepo) Create(ctx context.Context, ch *domain.Channel) (domain.ChannelID, error) {
	var id domain.ChannelID
	err := r.q.QueryRow(ctx, queries.QueryCreateChannel,
		ch.Name, ch.Owner.ID, ch.IsPublic, ch.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *ChannelRepo) GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	c, err := scanChannel(r.q.QueryRow(ctx, queries.QueryGetChannelByID, id))
	if err != nil {
		return nil, mapPgError(err)
	}

	rows, err := r.q.Query(ctx, queries.QueryGetChannelRoles, id)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	c.Members = make(map[domain.UserID]domain.ChannelRole)
	for rows.Next() {
		var (
			userID domain.UserID
			role   domain.ChannelRole
		)
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, mapPgError(err)
		}
		c.Members[userID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return &c, nil
}

func (r *ChannelRepo) ExistsByName(ctx context.Context, name domain.Name) (bool, error) {
	return exists(ctx, r.q, queries.QueryExistsChannelByName, name)
}

func (r *ChannelRepo) ListForMember(ctx context.Context, userID domain.UserID, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountChannelsForMember, queries.QueryListChannelsForMember,
		page, scanChannel, userID, likePattern(query),
	)
}

func (r *ChannelRepo) ListPublic(ctx context.Context, query string, page domain.PageRequest) (domain.Page[domain.Channel], error) {
	return queryPage(ctx, r.q,
		queries.QueryCountPublicChannels, queries.QueryListPublicChannels,
		page, scanChannel, likePattern(query),
	)
}

func (r *ChannelRepo) Update(ctx context.Context, ch *domain.Channel) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryUpdateChannel, ch.ID, ch.Name, ch.IsPublic))
}

func (r *ChannelRepo) Delete(ctx context.Context, id domain.ChannelID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryDeleteChannel, id))
}

func (r *ChannelRepo) AddMember(ctx context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole, now time.Time) error {
	_, err := r.q.Exec(ctx, queries.QueryAddChannelMember, id, userID, role, now)
	return mapPgError(err)
}

func (r *ChannelRepo) UpdateMemberRole(ctx context.Context, id domain.ChannelID, userID domain.UserID, role domain.ChannelRole) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryUpdateChannelMemberRole, id, userID, role))
}

func (r *ChannelRepo) RemoveMember(ctx context.Context, id domain.ChannelID, userID domain.UserID) error {
	return affectedOne(r.q.Exec(ctx, queries.QueryRemoveChannelMember, id, userID))
}

func (r *ChannelRepo) Members(ctx context.Context, id domain.ChannelID) ([]domain.ChannelMember, error) {
	rows, err := r.q.Query(ctx, queries.QueryListChannelMembers, id)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var members []domain.ChannelMember
	for rows.Next() {
		var m domain.ChannelMember
		if err := rows.Scan(&m.User.ID, &m.User.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, mapPgError(err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	// у существующего канала всегда есть хотя бы владелец
	if len(members) == 0 {
		return nil, repository.ErrNotFound
	}
	return members, nil
}
