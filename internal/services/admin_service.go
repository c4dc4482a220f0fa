// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripline/travel-backend/internal/commission"
	"github.com/tripline/travel-backend/internal/config"
	"github.com/tripline/travel-backend/internal/models"
	"github.com/tripline/travel-backend/internal/utils"
)

type AdminService struct {
	db  *gorm.DB
	cfg *config.Config
}

type DashboardStats struct {
	TotalUsers          int64   `json:"total_users"`
	TotalSellers        int64   `json:"total_sellers"`
	PendingSellers      int64   `json:"pending_sellers"`
	TotalBookings       int64   `json:"total_bookings"`
	CompletedBookings   int64   `json:"completed_bookings"`
	TotalRevenue        float64 `json:"total_revenue"`
	PendingCommission   float64 `json:"pending_commission"`
	PaidCommission      float64 `json:"paid_commission"`
	PendingRedemptions  int64   `json:"pending_redemptions"`
	OutstandingCoins    float64 `json:"outstanding_coins"`
	BookingsLast30Days  int64   `json:"bookings_last_30_days"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:  db,
		cfg: cfg,
	}
}

// GetDashboardStats aggregates the numbers the admin dashboard shows.
func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.SellerProfile{}).Count(&stats.TotalSellers)
	s.db.Model(&models.SellerProfile{}).
		Where("status = ?", models.SellerStatusPending).Count(&stats.PendingSellers)

	s.db.Model(&models.Booking{}).Count(&stats.TotalBookings)
	s.db.Model(&models.Booking{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).Count(&stats.CompletedBookings)

	s.db.Model(&models.Booking{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalRevenue)

	s.db.Model(&models.CommissionPayment{}).
		Where("status = ?", models.CommissionStatusPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PendingCommission)
	s.db.Model(&models.CommissionPayment{}).
		Where("status = ?", models.CommissionStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.PaidCommission)

	s.db.Model(&models.CoinRedemption{}).
		Where("status = ?", models.RedemptionStatusPending).Count(&stats.PendingRedemptions)
	s.db.Model(&models.SellerCoins{}).
		Select("COALESCE(SUM(redeemable_balance), 0)").Scan(&stats.OutstandingCoins)

	since := time.Now().AddDate(0, 0, -30)
	s.db.Model(&models.Booking{}).
		Where("created_at >= ?", since).Count(&stats.BookingsLast30Days)

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).Preload("SellerProfile")

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR full_name ILIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "username", "email", "user_type", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", commission.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.UserType == models.UserTypeAdmin {
		return nil, errors.New("admin accounts cannot be suspended")
	}

	user.Status = req.Status
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return &user, nil
}

func (s *AdminService) ListBookings(params utils.PaginationParams) ([]models.Booking, int64, error) {
	query := s.db.Model(&models.Booking{}).
		Preload("Customer").
		Preload("Seller").
		Preload("TripSchedule.Trip")

	if params.Status != "" {
		query = query.Where("payment_status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "payment_status", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, total, nil
}

func (s *AdminService) GetAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if params.Search != "" {
		query = query.Where("action ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
