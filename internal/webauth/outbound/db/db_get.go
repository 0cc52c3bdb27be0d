package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

const (
	queryIDByPublicUUID = `SELECT id FROM persons WHERE public_uuid = $1`
	queryIDByAPIKey     = `SELECT id FROM persons WHERE api_key = $1`
	queryTOTPPhrase     = `SELECT totp_phrase FROM persons WHERE id = $1`
	queryCountIPMatches = `SELECT COUNT(id) FROM login_ip_address
		WHERE person_id = $1 AND (ip_address = '*' OR ip_address LIKE $2 ESCAPE '\')`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *DB) FindIDByPublicUUID(ctx context.Context, uuid string) (_ entity.UserID, err error) {
	ctx, span := s.startSpan(ctx, "FindIDByPublicUUID")
	defer func() { s.endSpan(span, err) }()

	var id int64
	if err = s.conn.QueryRow(ctx, queryIDByPublicUUID, uuid).Scan(&id); err != nil {
		return entity.UserIDUnresolved, s.mapError(err)
	}

	return entity.UserID(id), nil
}

func (s *DB) FindIDByAPIKey(ctx context.Context, key string) (_ entity.UserID, err error) {
	ctx, span := s.startSpan(ctx, "FindIDByAPIKey")
	defer func() { s.endSpan(span, err) }()

	var id int64
	if err = s.conn.QueryRow(ctx, queryIDByAPIKey, key).Scan(&id); err != nil {
		return entity.UserIDUnresolved, s.mapError(err)
	}

	return entity.UserID(id), nil
}

// GetTOTPPhrase returns "" for a user whose phrase column is NULL.
func (s *DB) GetTOTPPhrase(ctx context.Context, userID entity.UserID) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "GetTOTPPhrase")
	defer func() { s.endSpan(span, err) }()

	var phrase pgtype.Text
	if err = s.conn.QueryRow(ctx, queryTOTPPhrase, int64(userID)).Scan(&phrase); err != nil {
		return "", s.mapError(err)
	}

	return phrase.String, nil
}

// CountIPMatches counts allow-list rows for userID that are the wildcard or
// equal candidateIP. LIKE metacharacters in candidateIP match literally.
func (s *DB) CountIPMatches(ctx context.Context, userID entity.UserID, candidateIP string) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountIPMatches")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx, queryCountIPMatches, int64(userID), likeEscaper.Replace(candidateIP)).Scan(&count)
	if err != nil {
		return 0, s.mapError(err)
	}

	return count, nil
}
