package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/middleware"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/services"
	"github.com/yunseo-dev/glowbook/utils"
)

// resetTokens is the Redis-backed store for password reset tokens. It is
// nil when Redis is unreachable; the reset endpoints then answer 503.
var resetTokens *utils.ResetTokenStore

// SetResetTokenStore wires the reset-token store at startup
func SetResetTokenStore(store *utils.ResetTokenStore) {
	resetTokens = store
}

func lockoutService() *services.LockoutService {
	return services.NewLockoutService(
		config.DB,
		config.AppConfig.LockoutMaxAttempts,
		config.AppConfig.LockoutWindow,
	)
}

// RegisterRequest is the signup payload. Role decides which profile link
// is required.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"required"`
	StudioID   *uint  `json:"studio_id"`
	DesignerID *uint  `json:"designer_id"`
	CustomerID *uint  `json:"customer_id"`
}

// Register creates a user and its credential record in one transaction
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid registration data: "+err.Error(), "")
		return
	}

	switch req.Role {
	case models.RoleStudio, models.RoleDesigner, models.RoleCustomer:
	default:
		utils.BadRequest(c, "Invalid role", "")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Password hashing failed: %v", err)
		utils.InternalServerError(c, "Failed to create account")
		return
	}

	user := models.User{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		StudioID:   req.StudioID,
		DesignerID: req.DesignerID,
		CustomerID: req.CustomerID,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to create account")
		return
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Email already registered", utils.CodeValidation)
			return
		}
		utils.LogError("User create failed: %v", err)
		utils.InternalServerError(c, "Failed to create account")
		return
	}
	auth := models.AuthLocal{UserID: user.ID, PasswordHash: hash}
	if err := tx.Create(&auth).Error; err != nil {
		tx.Rollback()
		utils.LogError("Credential create failed: user=%d err=%v", user.ID, err)
		utils.InternalServerError(c, "Failed to create account")
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to create account")
		return
	}

	utils.LogInfo("User registered: id=%d email=%s role=%s", user.ID, user.Email, user.Role)
	utils.Created(c, "Account created", gin.H{"user": user})
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user. A locked account is refused before the
// password is even checked - the right password during the lock window
// still gets the locked response and does not touch the counter. Unknown
// email and wrong password answer identically.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid login data", "")
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
			return
		}
		utils.InternalServerError(c, "Login failed")
		return
	}

	var auth models.AuthLocal
	if err := config.DB.Where("user_id = ?", user.ID).First(&auth).Error; err != nil {
		utils.LogError("Credential lookup failed: user=%d err=%v", user.ID, err)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	lockout := lockoutService()

	if auth.IsLocked(time.Now()) {
		utils.LogInfo("Login refused, account locked: user=%d until=%s", user.ID, auth.LockedUntil)
		utils.Locked(c, "Account temporarily locked due to repeated failed logins")
		return
	}

	if !utils.CheckPassword(auth.PasswordHash, req.Password) {
		locked, _, err := lockout.RecordFailure(user.ID)
		if err != nil {
			utils.LogError("Failure recording failed: user=%d err=%v", user.ID, err)
		}
		if locked {
			utils.Locked(c, "Account temporarily locked due to repeated failed logins")
			return
		}
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := lockout.RecordSuccess(user.ID); err != nil {
		utils.LogError("Success recording failed: user=%d err=%v", user.ID, err)
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.LogError("Token generation failed: user=%d err=%v", user.ID, err)
		utils.InternalServerError(c, "Login failed")
		return
	}

	utils.LogInfo("User logged in: id=%d", user.ID)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile
func Me(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}
	var user models.User
	if err := config.DB.First(&user, actor.UserID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	utils.Success(c, "Profile retrieved", gin.H{"user": user})
}

// PasswordResetRequest issues a single-use reset token with a TTL. The
// response never reveals whether the email exists.
func PasswordResetRequest(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", "")
		return
	}
	if resetTokens == nil {
		utils.Error(c, 503, "Password reset temporarily unavailable", utils.CodeInternal)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Same answer for unknown emails.
		utils.Success(c, "If the email exists, a reset token has been issued", nil)
		return
	}

	token, err := resetTokens.Issue(c.Request.Context(), user.ID)
	if err != nil {
		utils.LogError("Reset token issue failed: user=%d err=%v", user.ID, err)
		utils.InternalServerError(c, "Failed to issue reset token")
		return
	}

	utils.LogInfo("Reset token issued: user=%d", user.ID)
	// Token returned in the response; mail delivery is out of scope.
	utils.Success(c, "If the email exists, a reset token has been issued", gin.H{"reset_token": token})
}

// PasswordResetConfirm consumes a reset token and sets the new password.
// A successful reset also clears any lockout state.
func PasswordResetConfirm(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", "")
		return
	}
	if resetTokens == nil {
		utils.Error(c, 503, "Password reset temporarily unavailable", utils.CodeInternal)
		return
	}

	userID, err := resetTokens.Consume(c.Request.Context(), req.Token)
	if err != nil {
		utils.BadRequest(c, "Invalid or expired reset token", "")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalServerError(c, "Failed to reset password")
		return
	}

	res := config.DB.Model(&models.AuthLocal{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":   hash,
			"failed_attempts": 0,
			"locked_until":    nil,
		})
	if res.Error != nil || res.RowsAffected == 0 {
		utils.LogError("Password reset write failed: user=%d err=%v", userID, res.Error)
		utils.InternalServerError(c, "Failed to reset password")
		return
	}

	utils.LogInfo("Password reset: user=%d", userID)
	utils.Success(c, "Password updated", nil)
}

// EnsureDefaultAdmin seeds the admin account on first boot
func EnsureDefaultAdmin(db *gorm.DB) error {
	email := "admin@glowbook.local"

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("changeme-admin")
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Email: email, Name: "Administrator", Role: models.RoleAdmin}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.AuthLocal{UserID: user.ID, PasswordHash: hash}).Error; err != nil {
			return err
		}
		utils.LogInfo("Default admin created: %s", email)
		return nil
	})
}
