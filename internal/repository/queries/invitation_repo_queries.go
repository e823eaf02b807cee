package queries

const (
	QueryCreateImInvitation = `
		INSERT INTO im_invitations (token, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4);
	`
	QueryGetImInvitation = `
		SELECT token, status, created_at, expires_at
		FROM im_invitations
		WHERE token = $1;
	`
	QueryUpdateImInvitationStatus = `UPDATE im_invitations SET status = $3 WHERE token = $1 AND status = $2;`
	QueryExistsImInvitation       = `SELECT EXISTS (SELECT 1 FROM im_invitations WHERE token = $1);`

	QueryCreateChannelInvitation = `
		INSERT INTO channel_invitations (channel_id, inviter_id, invitee_id, status, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	selectChannelInvitation = `
		SELECT i.id, i.channel_id, c.name, inviter.id, inviter.name, invitee.id, invitee.name,
		       i.status, i.role, i.created_at, i.expires_at
		FROM channel_invitations i
		JOIN channels c ON c.id = i.channel_id
		JOIN users inviter ON inviter.id = i.inviter_id
		JOIN users invitee ON invitee.id = i.invitee_id
	`
	QueryGetChannelInvitation = selectChannelInvitation + `WHERE i.id = $1;`

	QueryCountReceivedInvitations = `
		SELECT count(*) FROM channel_invitations
		WHERE invitee_id = $1 AND status = $2 AND expires_at > $3;
	`
	QueryListReceivedInvitations = selectChannelInvitation + `
		WHERE i.invitee_id = $1 AND i.status = $2 AND i.expires_at > $3
		ORDER BY i.id DESC
		LIMIT $4 OFFSET $5;
	`
	QueryCountChannelInvitations = `SELECT count(*) FROM channel_invitations WHERE channel_id = $1;`
	QueryListChannelInvitations  = selectChannelInvitation + `
		WHERE i.channel_id = $1
		ORDER BY i.id DESC
		LIMIT $2 OFFSET $3;
	`
	QueryExistsPendingInvitation = `
		SELECT EXISTS (
			SELECT 1 FROM channel_invitations
			WHERE channel_id = $1 AND invitee_id = $2 AND status = 'PENDING' AND expires_at > $3
		);
	`
	QueryUpdateChannelInvitationStatus = `UPDATE channel_invitations SET status = $3 WHERE id = $1 AND status = $2;`
	QueryExistsChannelInvitation       = `SELECT EXISTS (SELECT 1 FROM channel_invitations WHERE id = $1);`
	QueryDeleteChannelInvitation       = `DELETE FROM channel_invitations WHERE id = $1;`
)
