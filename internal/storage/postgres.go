package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/models"
)

// PostgresStore implements the identity, profile, link and session store
// contracts on one pgx pool, plus audit event persistence for the auditor
// service. The SQL carries the same atomicity guarantees the memory
// stores provide with locks: session Begin uses an insert guarded by the
// open-session predicate and link Decide runs count-and-set in a
// transaction. Profile/link/session contracts are exposed as sub-stores
// because each contract names its own Get.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Profiles returns the biometric.ProfileStore view.
func (s *PostgresStore) Profiles() *PostgresProfileStore {
	return &PostgresProfileStore{pool: s.pool}
}

// Links returns the links.LinkStore view.
func (s *PostgresStore) Links() *PostgresLinkStore {
	return &PostgresLinkStore{pool: s.pool}
}

// Sessions returns the visits.SessionStore view.
func (s *PostgresStore) Sessions() *PostgresSessionStore {
	return &PostgresSessionStore{pool: s.pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Visitors ---

func (s *PostgresStore) CreateVisitor(ctx context.Context, code, name string) (*models.Visitor, error) {
	v := &models.Visitor{
		ID:     uuid.New(),
		Code:   code,
		Name:   name,
		Status: models.VisitorStatusActive,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO visitors (id, code, name, status) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		v.ID, v.Code, v.Name, v.Status,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("visitor code %s already in use", code)
		}
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) VisitorByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	return scanVisitor(s.pool.QueryRow(ctx,
		`SELECT id, code, name, status, created_at, updated_at FROM visitors WHERE id = $1`, id))
}

func (s *PostgresStore) VisitorByCode(ctx context.Context, code string) (*models.Visitor, error) {
	return scanVisitor(s.pool.QueryRow(ctx,
		`SELECT id, code, name, status, created_at, updated_at FROM visitors WHERE upper(code) = upper($1)`, code))
}

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	v := &models.Visitor{}
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get visitor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) ListVisitors(ctx context.Context) ([]models.Visitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, name, status, created_at, updated_at FROM visitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	var visitors []models.Visitor
	for rows.Next() {
		var v models.Visitor
		if err := rows.Scan(&v.ID, &v.Code, &v.Name, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	return visitors, nil
}

func (s *PostgresStore) UpdateVisitorStatus(ctx context.Context, id uuid.UUID, status models.VisitorStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE visitors SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update visitor status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

// --- Detainees ---

func (s *PostgresStore) CreateDetainee(ctx context.Context, code, name string) (*models.Detainee, error) {
	d := &models.Detainee{
		ID:     uuid.New(),
		Code:   code,
		Name:   name,
		Status: models.DetaineeStatusDetained,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO detainees (id, code, name, status) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		d.ID, d.Code, d.Name, d.Status,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("detainee code %s already in use", code)
		}
		return nil, fmt.Errorf("create detainee: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) DetaineeByID(ctx context.Context, id uuid.UUID) (*models.Detainee, error) {
	d := &models.Detainee{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, name, status, created_at, updated_at FROM detainees WHERE id = $1`, id,
	).Scan(&d.ID, &d.Code, &d.Name, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get detainee: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDetainees(ctx context.Context) ([]models.Detainee, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, name, status, created_at, updated_at FROM detainees ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list detainees: %w", err)
	}
	defer rows.Close()

	var detainees []models.Detainee
	for rows.Next() {
		var d models.Detainee
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan detainee: %w", err)
		}
		detainees = append(detainees, d)
	}
	return detainees, nil
}

func (s *PostgresStore) UpdateDetaineeStatus(ctx context.Context, id uuid.UUID, status models.DetaineeStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE detainees SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update detainee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("detainee not found")
	}
	return nil
}

// --- Biometric profiles ---

type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// Replace swaps the visitor's full sample set in one transaction, so a
// concurrent Snapshot sees the old set or the new set, never a mix.
func (s *PostgresProfileStore) Replace(ctx context.Context, profile *models.BiometricProfile) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin enroll tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM profile_samples WHERE visitor_id = $1`, profile.VisitorID); err != nil {
		return fmt.Errorf("clear profile samples: %w", err)
	}

	for i, emb := range profile.Embeddings {
		vec := pgvector.NewVector(emb)
		if _, err := tx.Exec(ctx,
			`INSERT INTO profile_samples (id, visitor_id, position, embedding, quality, enrolled_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), profile.VisitorID, i, vec, profile.Quality[i], profile.EnrolledAt); err != nil {
			return fmt.Errorf("insert profile sample: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit enroll tx: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) Get(ctx context.Context, visitorID uuid.UUID) (*models.BiometricProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT embedding, quality, enrolled_at FROM profile_samples
		 WHERE visitor_id = $1 ORDER BY position`, visitorID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	defer rows.Close()

	profile := &models.BiometricProfile{VisitorID: visitorID}
	for rows.Next() {
		var vec pgvector.Vector
		var quality float32
		if err := rows.Scan(&vec, &quality, &profile.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan profile sample: %w", err)
		}
		profile.Embeddings = append(profile.Embeddings, vec.Slice())
		profile.Quality = append(profile.Quality, quality)
	}
	if len(profile.Embeddings) == 0 {
		return nil, nil
	}
	return profile, nil
}

// Snapshot reads every sample in one repeatable-read transaction so the
// matcher never observes a half-replaced profile.
func (s *PostgresProfileStore) Snapshot(ctx context.Context) ([]*models.BiometricProfile, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT visitor_id, embedding, quality, enrolled_at FROM profile_samples
		 ORDER BY visitor_id, position`)
	if err != nil {
		return nil, fmt.Errorf("snapshot profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.BiometricProfile
	var current *models.BiometricProfile
	for rows.Next() {
		var visitorID uuid.UUID
		var vec pgvector.Vector
		var quality float32
		var enrolledAt time.Time
		if err := rows.Scan(&visitorID, &vec, &quality, &enrolledAt); err != nil {
			return nil, fmt.Errorf("scan profile sample: %w", err)
		}
		if current == nil || current.VisitorID != visitorID {
			current = &models.BiometricProfile{VisitorID: visitorID, EnrolledAt: enrolledAt}
			out = append(out, current)
		}
		current.Embeddings = append(current.Embeddings, vec.Slice())
		current.Quality = append(current.Quality, quality)
	}
	return out, nil
}

func (s *PostgresProfileStore) Delete(ctx context.Context, visitorID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM profile_samples WHERE visitor_id = $1`, visitorID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// --- Relationship links ---

type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

const linkColumns = `id, visitor_id, detainee_id, relationship, category, status, approver_id, decided_at, reject_reason, created_at`

func (s *PostgresLinkStore) Create(ctx context.Context, link *models.RelationshipLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO relationship_links (id, visitor_id, detainee_id, relationship, category, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.ID, link.VisitorID, link.DetaineeID, link.Relationship, link.Category, link.Status, link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateLink
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (s *PostgresLinkStore) Get(ctx context.Context, id uuid.UUID) (*models.RelationshipLink, error) {
	return scanLink(s.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM relationship_links WHERE id = $1`, id))
}

func scanLink(row pgx.Row) (*models.RelationshipLink, error) {
	l := &models.RelationshipLink{}
	var reason *string
	err := row.Scan(&l.ID, &l.VisitorID, &l.DetaineeID, &l.Relationship, &l.Category,
		&l.Status, &l.ApproverID, &l.DecidedAt, &reason, &l.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	if reason != nil {
		l.RejectReason = *reason
	}
	return l, nil
}

// Decide locks the link row, counts approved links in its category for
// capacity, and applies the transition — all in one transaction.
func (s *PostgresLinkStore) Decide(ctx context.Context, id uuid.UUID, d links.Decision) (*models.RelationshipLink, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin decide tx: %w", err)
	}
	defer tx.Rollback(ctx)

	link, err := scanLink(tx.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM relationship_links WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}

	if link.Status != models.ApprovalPending {
		if !d.Approve && link.Status == models.ApprovalRejected && d.AllowReasonUpdate {
			if _, err := tx.Exec(ctx,
				`UPDATE relationship_links SET reject_reason = $1 WHERE id = $2`, d.Reason, id); err != nil {
				return nil, fmt.Errorf("update reject reason: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit decide tx: %w", err)
			}
			link.RejectReason = d.Reason
			return link, nil
		}
		return nil, models.ErrAlreadyDecided
	}

	if d.Approve && d.CategoryLimit >= 0 {
		var count int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM relationship_links
			 WHERE detainee_id = $1 AND category = $2 AND status = 'approved'`,
			link.DetaineeID, link.Category,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count approved links: %w", err)
		}
		if count >= d.CategoryLimit {
			return nil, fmt.Errorf("%w: %s has %d/%d in %s",
				models.ErrCapacityExceeded, link.DetaineeID, count, d.CategoryLimit, link.Category)
		}
	}

	status := models.ApprovalRejected
	if d.Approve {
		status = models.ApprovalApproved
	}
	if _, err := tx.Exec(ctx,
		`UPDATE relationship_links SET status = $1, approver_id = $2, decided_at = $3, reject_reason = $4 WHERE id = $5`,
		status, d.ApproverID, d.Now, d.Reason, id); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit decide tx: %w", err)
	}

	approver := d.ApproverID
	now := d.Now
	link.Status = status
	link.ApproverID = &approver
	link.DecidedAt = &now
	link.RejectReason = d.Reason
	return link, nil
}

func (s *PostgresLinkStore) ApprovedForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	return s.query(ctx,
		`SELECT `+linkColumns+` FROM relationship_links
		 WHERE visitor_id = $1 AND status = 'approved' ORDER BY created_at`, visitorID)
}

func (s *PostgresLinkStore) ApprovedForDetainee(ctx context.Context, detaineeID uuid.UUID) ([]*models.RelationshipLink, error) {
	return s.query(ctx,
		`SELECT `+linkColumns+` FROM relationship_links
		 WHERE detainee_id = $1 AND status = 'approved' ORDER BY created_at`, detaineeID)
}

func (s *PostgresLinkStore) ForVisitor(ctx context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	return s.query(ctx,
		`SELECT `+linkColumns+` FROM relationship_links
		 WHERE visitor_id = $1 ORDER BY created_at`, visitorID)
}

func (s *PostgresLinkStore) query(ctx context.Context, query string, args ...interface{}) ([]*models.RelationshipLink, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var out []*models.RelationshipLink
	for rows.Next() {
		l := &models.RelationshipLink{}
		var reason *string
		if err := rows.Scan(&l.ID, &l.VisitorID, &l.DetaineeID, &l.Relationship, &l.Category,
			&l.Status, &l.ApproverID, &l.DecidedAt, &reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if reason != nil {
			l.RejectReason = *reason
		}
		out = append(out, l)
	}
	return out, nil
}

// --- Visit sessions ---

type PostgresSessionStore struct {
	pool *pgxpool.Pool
}

const sessionColumns = `id, visitor_id, detainee_id, link_id, visit_type, time_in, time_in_method, time_out, time_out_method`

// Begin inserts only if the visitor has no open session; the partial
// unique index on (visitor_id) WHERE time_out IS NULL backs this up under
// concurrent writers.
func (s *PostgresSessionStore) Begin(ctx context.Context, session *models.VisitSession) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO visit_sessions (id, visitor_id, detainee_id, link_id, visit_type, time_in, time_in_method)
		 SELECT $1, $2, $3, $4, $5, $6, $7
		 WHERE NOT EXISTS (
		     SELECT 1 FROM visit_sessions WHERE visitor_id = $2 AND time_out IS NULL
		 )`,
		session.ID, session.VisitorID, session.DetaineeID, session.LinkID,
		session.VisitType, session.TimeIn, session.TimeInMethod)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrSessionAlreadyOpen
		}
		return fmt.Errorf("begin session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSessionAlreadyOpen
	}
	return nil
}

func (s *PostgresSessionStore) End(ctx context.Context, sessionID uuid.UUID, out time.Time, method models.CheckMethod) (*models.VisitSession, error) {
	session := &models.VisitSession{}
	var outMethod *string
	err := s.pool.QueryRow(ctx,
		`UPDATE visit_sessions SET time_out = $1, time_out_method = $2
		 WHERE id = $3 AND time_out IS NULL
		 RETURNING `+sessionColumns,
		out, method, sessionID,
	).Scan(&session.ID, &session.VisitorID, &session.DetaineeID, &session.LinkID,
		&session.VisitType, &session.TimeIn, &session.TimeInMethod, &session.TimeOut, &outMethod)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNoOpenSession
		}
		return nil, fmt.Errorf("end session: %w", err)
	}
	if outMethod != nil {
		session.TimeOutMethod = models.CheckMethod(*outMethod)
	}
	return session, nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.VisitSession, error) {
	return scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM visit_sessions WHERE id = $1`, sessionID))
}

func (s *PostgresSessionStore) OpenForVisitor(ctx context.Context, visitorID uuid.UUID) (*models.VisitSession, error) {
	return scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM visit_sessions WHERE visitor_id = $1 AND time_out IS NULL`, visitorID))
}

func scanSession(row pgx.Row) (*models.VisitSession, error) {
	session := &models.VisitSession{}
	var outMethod *string
	err := row.Scan(&session.ID, &session.VisitorID, &session.DetaineeID, &session.LinkID,
		&session.VisitType, &session.TimeIn, &session.TimeInMethod, &session.TimeOut, &outMethod)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if outMethod != nil {
		session.TimeOutMethod = models.CheckMethod(*outMethod)
	}
	return session, nil
}

func (s *PostgresSessionStore) Open(ctx context.Context) ([]*models.VisitSession, error) {
	return s.query(ctx,
		`SELECT `+sessionColumns+` FROM visit_sessions WHERE time_out IS NULL ORDER BY time_in`)
}

func (s *PostgresSessionStore) CompletedBetween(ctx context.Context, from, to time.Time) ([]*models.VisitSession, error) {
	return s.query(ctx,
		`SELECT `+sessionColumns+` FROM visit_sessions
		 WHERE time_out >= $1 AND time_out < $2 ORDER BY time_out`, from, to)
}

func (s *PostgresSessionStore) query(ctx context.Context, query string, args ...interface{}) ([]*models.VisitSession, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.VisitSession
	for rows.Next() {
		session := &models.VisitSession{}
		var outMethod *string
		if err := rows.Scan(&session.ID, &session.VisitorID, &session.DetaineeID, &session.LinkID,
			&session.VisitType, &session.TimeIn, &session.TimeInMethod, &session.TimeOut, &outMethod); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if outMethod != nil {
			session.TimeOutMethod = models.CheckMethod(*outMethod)
		}
		out = append(out, session)
	}
	return out, nil
}

func (s *PostgresSessionStore) CountForLink(ctx context.Context, linkID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM visit_sessions WHERE link_id = $1`, linkID,
	).Scan(&count)
	return count, err
}

// --- Audit events ---

func (s *PostgresStore) InsertAuditEvent(ctx context.Context, ev *models.AuditEvent) error {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	// Idempotent on event id; JetStream redelivery must not duplicate rows.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO audit_events (id, actor_id, action, target_type, target_id, timestamp, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.ActorID, ev.Action, ev.TargetType, ev.TargetID, ev.Timestamp, details)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) QueryAuditEvents(ctx context.Context, action string, targetID *uuid.UUID, from, to *time.Time, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	where := "WHERE true"
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		where += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}
	if targetID != nil {
		where += fmt.Sprintf(" AND target_id = $%d", argIdx)
		args = append(args, *targetID)
		argIdx++
	}
	if from != nil {
		where += fmt.Sprintf(" AND timestamp >= $%d", argIdx)
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		where += fmt.Sprintf(" AND timestamp <= $%d", argIdx)
		args = append(args, *to)
		argIdx++
	}

	query := fmt.Sprintf(
		`SELECT id, actor_id, action, target_type, target_id, timestamp, details
		 FROM audit_events %s ORDER BY timestamp DESC LIMIT $%d`, where, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var ev models.AuditEvent
		var details []byte
		if err := rows.Scan(&ev.ID, &ev.ActorID, &ev.Action, &ev.TargetType, &ev.TargetID, &ev.Timestamp, &details); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &ev.Details)
		}
		events = append(events, ev)
	}
	return events, nil
}
