package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/db"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// ICampaignRepository defines campaign persistence
type ICampaignRepository interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Campaign, int64, error)
}

// CampaignRepository handles the campaigns table
type CampaignRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *CampaignRepository) selectCampaigns() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.title", "c.description", "c.goal_amount", "c.raised_amount", "c.currency", "c.cover_image_url",
		"c.starts_at", "c.ends_at", "c.is_active", "c.created_by", "c.created_at", "c.updated_at",
		"(SELECT COUNT(DISTINCT COALESCE(d.user_id, -d.id)) FROM donations d WHERE d.campaign_id = c.id AND d.status = 'completed')",
	).From("campaigns c")
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.GoalAmount, &c.RaisedAmount, &c.Currency, &c.CoverImageURL,
		&c.StartsAt, &c.EndsAt, &c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.DonorCount)
	return c, err
}

// Create inserts a campaign
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO campaigns (title, description, goal_amount, currency, cover_image_url, starts_at, ends_at, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, raised_amount, created_at, updated_at`,
		c.Title, c.Description, c.GoalAmount, c.Currency, c.CoverImageURL, c.StartsAt, c.EndsAt, c.IsActive, c.CreatedBy,
	).Scan(&c.ID, &c.RaisedAmount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("goal amount must be positive")
		}
		return fmt.Errorf("error creating campaign: %w", err)
	}
	return nil
}

// GetByID loads one campaign with donor count
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	sql, args, err := r.selectCampaigns().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get campaign query: %w", err)
	}

	c, err := scanCampaign(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("campaign not found")
		}
		return nil, fmt.Errorf("error retrieving campaign: %w", err)
	}
	return c, nil
}

// Update replaces the editable campaign fields. raised_amount is only moved by donations.
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	err := r.db.QueryRow(ctx, `
		UPDATE campaigns SET title = $1, description = $2, goal_amount = $3, currency = $4, cover_image_url = $5,
			starts_at = $6, ends_at = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9 RETURNING raised_amount, created_at, updated_at`,
		c.Title, c.Description, c.GoalAmount, c.Currency, c.CoverImageURL, c.StartsAt, c.EndsAt, c.IsActive, c.ID,
	).Scan(&c.RaisedAmount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("campaign not found")
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("goal amount must be positive")
		}
		return fmt.Errorf("error updating campaign: %w", err)
	}
	return nil
}

// Delete removes a campaign without donations
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewConflictError("campaign has donations; deactivate it instead")
		}
		return fmt.Errorf("error deleting campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("campaign not found")
	}
	return nil
}

// List lists campaigns, newest first
func (r *CampaignRepository) List(ctx context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Campaign, int64, error) {
	where := squirrel.And{}
	if activeOnly {
		where = append(where, squirrel.Eq{"c.is_active": true})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("campaigns c").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting campaigns: %w", err)
	}

	sql, args, err := r.selectCampaigns().Where(where).
		OrderBy("c.created_at DESC", "c.id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list campaigns query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing campaigns: %w", err)
	}
	defer rows.Close()

	items := []*models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning campaign: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// IDonationRepository defines donation and payment transaction persistence
type IDonationRepository interface {
	CreatePending(ctx context.Context, d *models.Donation) (*models.PaymentTransaction, error)
	SetProviderOrder(ctx context.Context, donationID int64, orderID string) error
	GetByID(ctx context.Context, id int64) (*models.Donation, error)
	GetTransaction(ctx context.Context, donationID int64) (*models.PaymentTransaction, error)
	MarkFailed(ctx context.Context, donationID int64, reason string) error
	Complete(ctx context.Context, donationID int64, paymentID string) (*models.Donation, bool, error)
	List(ctx context.Context, filter models.DonationFilter, offset uint64, limit int) ([]*models.Donation, int64, error)
}

// DonationRepository handles donations and payment_transactions
type DonationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDonationRepository creates a new DonationRepository
func NewDonationRepository(db *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *DonationRepository) selectDonations() squirrel.SelectBuilder {
	return r.sb.Select(
		"d.id", "d.campaign_id", "d.user_id", "d.amount", "d.currency", "d.is_anonymous", "d.message", "d.status",
		"d.created_at", "d.completed_at", "c.title", "pr.username", "pr.full_name", "pr.avatar_url",
	).
		From("donations d").
		Join("campaigns c ON c.id = d.campaign_id").
		LeftJoin("profiles pr ON pr.user_id = d.user_id")
}

func scanDonation(row pgx.Row) (*models.Donation, error) {
	d := &models.Donation{}
	var username, fullName, avatar *string
	err := row.Scan(&d.ID, &d.CampaignID, &d.UserID, &d.Amount, &d.Currency, &d.IsAnonymous, &d.Message, &d.Status,
		&d.CreatedAt, &d.CompletedAt, &d.CampaignTitle, &username, &fullName, &avatar)
	if err != nil {
		return nil, err
	}
	if d.UserID != nil && username != nil {
		d.Donor = &models.UserSummary{ID: *d.UserID, Username: *username, AvatarURL: avatar}
		if fullName != nil {
			d.Donor.FullName = *fullName
		}
	}
	return d, nil
}

func scanTransaction(row pgx.Row) (*models.PaymentTransaction, error) {
	t := &models.PaymentTransaction{}
	err := row.Scan(&t.ID, &t.DonationID, &t.ProviderOrderID, &t.ProviderPaymentID, &t.Amount, &t.Currency,
		&t.Status, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const transactionSelect = `
	SELECT id, donation_id, provider_order_id, provider_payment_id, amount, currency, status, failure_reason,
		created_at, updated_at
	FROM payment_transactions`

// CreatePending inserts a pending donation and its created transaction
func (r *DonationRepository) CreatePending(ctx context.Context, d *models.Donation) (*models.PaymentTransaction, error) {
	d.Status = models.DonationPending
	txn := &models.PaymentTransaction{Amount: d.Amount, Currency: d.Currency, Status: models.TransactionCreated}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO donations (campaign_id, user_id, amount, currency, is_anonymous, message, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
			d.CampaignID, d.UserID, d.Amount, d.Currency, d.IsAnonymous, d.Message, d.Status,
		).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return err
		}

		txn.DonationID = d.ID
		return tx.QueryRow(ctx, `
			INSERT INTO payment_transactions (donation_id, amount, currency, status)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
			txn.DonationID, txn.Amount, txn.Currency, txn.Status,
		).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.NewResourceNotFoundError("campaign not found")
		}
		logger.Error().Err(err).Int64("campaignID", d.CampaignID).Msg("Error creating donation")
		return nil, fmt.Errorf("error creating donation: %w", err)
	}
	return txn, nil
}

// SetProviderOrder stores the payment provider order id
func (r *DonationRepository) SetProviderOrder(ctx context.Context, donationID int64, orderID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_transactions SET provider_order_id = $1, updated_at = NOW() WHERE donation_id = $2`,
		orderID, donationID)
	if err != nil {
		return fmt.Errorf("error storing provider order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("payment transaction not found")
	}
	return nil
}

// GetByID loads one donation
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	sql, args, err := r.selectDonations().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get donation query: %w", err)
	}

	d, err := scanDonation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("donation not found")
		}
		return nil, fmt.Errorf("error retrieving donation: %w", err)
	}
	return d, nil
}

// GetTransaction loads the payment transaction of a donation
func (r *DonationRepository) GetTransaction(ctx context.Context, donationID int64) (*models.PaymentTransaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, transactionSelect+` WHERE donation_id = $1`, donationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("payment transaction not found")
		}
		return nil, fmt.Errorf("error retrieving transaction: %w", err)
	}
	return t, nil
}

// MarkFailed fails a pending donation and its transaction. Completed donations are left alone.
func (r *DonationRepository) MarkFailed(ctx context.Context, donationID int64, reason string) error {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE donations SET status = 'failed' WHERE id = $1 AND status = 'pending'`, donationID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE payment_transactions SET status = 'failed', failure_reason = $1, updated_at = NOW()
			WHERE donation_id = $2`, reason, donationID)
		return err
	})
	if err != nil {
		return fmt.Errorf("error failing donation: %w", err)
	}
	return nil
}

// Complete settles a donation: donation completed, transaction success, campaign raised
// amount increased, all in one transaction. The bool reports a donation that was already completed.
// Only pending donations can be completed; a failed one yields ErrPaymentFailed.
func (r *DonationRepository) Complete(ctx context.Context, donationID int64, paymentID string) (*models.Donation, bool, error) {
	var already bool

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var status models.DonationStatus
		var campaignID, amount int64
		err := tx.QueryRow(ctx, `
			SELECT status, campaign_id, amount FROM donations WHERE id = $1 FOR UPDATE`, donationID,
		).Scan(&status, &campaignID, &amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewResourceNotFoundError("donation not found")
			}
			return err
		}

		switch status {
		case models.DonationCompleted:
			already = true
			return nil
		case models.DonationPending:
		default:
			return apperrors.NewCustomError(apperrors.ErrPaymentFailed, "donation is no longer pending")
		}

		now := time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE donations SET status = 'completed', completed_at = $1 WHERE id = $2`, now, donationID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE payment_transactions SET status = 'success', provider_payment_id = $1, failure_reason = NULL,
				updated_at = $2
			WHERE donation_id = $3`, paymentID, now, donationID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE campaigns SET raised_amount = raised_amount + $1, updated_at = $2 WHERE id = $3`,
			amount, now, campaignID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) || errors.Is(err, apperrors.ErrPaymentFailed) {
			return nil, false, err
		}
		logger.Error().Err(err).Int64("donationID", donationID).Msg("Error completing donation")
		return nil, false, fmt.Errorf("error completing donation: %w", err)
	}

	d, err := r.GetByID(ctx, donationID)
	if err != nil {
		return nil, already, err
	}
	return d, already, nil
}

// List lists donations newest first
func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter, offset uint64, limit int) ([]*models.Donation, int64, error) {
	where := squirrel.And{}
	if filter.CampaignID != nil {
		where = append(where, squirrel.Eq{"d.campaign_id": *filter.CampaignID})
	}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"d.user_id": *filter.UserID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"d.status": *filter.Status})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("donations d").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting donations: %w", err)
	}

	sql, args, err := r.selectDonations().Where(where).
		OrderBy("d.created_at DESC", "d.id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list donations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing donations: %w", err)
	}
	defer rows.Close()

	items := []*models.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning donation: %w", err)
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
