package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"checklist-service/internal/model"
)

type MemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

func (r *MemberRepository) Insert(ctx context.Context, m *model.TeamMember) (int, error) {
	r.logger.Debug("Inserting team member",
		zap.String("email", m.Email),
		zap.String("role", m.Role),
	)
	query := `
        INSERT INTO team_members (email, full_name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		m.Email,
		m.FullName,
		m.PasswordHash,
		m.Role,
	).Scan(&id, &m.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert team member",
			zap.Error(err),
			zap.String("email", m.Email),
		)
		return 0, err
	}
	r.logger.Info("Team member inserted successfully",
		zap.Int("member_id", id),
		zap.String("role", m.Role),
	)
	return id, nil
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*model.TeamMember, error) {
	r.logger.Debug("Fetching team member by email", zap.String("email", email))
	query := `
        SELECT id, email, full_name, password_hash, role, created_at
        FROM team_members
        WHERE email = $1
    `
	var m model.TeamMember
	err := r.db.QueryRow(ctx, query, email).Scan(
		&m.ID,
		&m.Email,
		&m.FullName,
		&m.PasswordHash,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		r.logger.Warn("Team member not found by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, memberID int) (*model.TeamMember, error) {
	query := `
        SELECT id, email, full_name, password_hash, role, created_at
        FROM team_members
        WHERE id = $1
    `
	var m model.TeamMember
	err := r.db.QueryRow(ctx, query, memberID).Scan(
		&m.ID,
		&m.Email,
		&m.FullName,
		&m.PasswordHash,
		&m.Role,
		&m.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to fetch team member",
			zap.Error(err),
			zap.Int("member_id", memberID),
		)
		return nil, err
	}
	return &m, nil
}
