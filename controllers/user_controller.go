package controllers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"newswire/config"
	"newswire/middleware"
	"newswire/models"
	"newswire/utils"
)

// UserController handles registration, token issuance and profile management.
type UserController struct {
	db       *gorm.DB
	password utils.PasswordPolicy
}

// NewUserController creates a UserController with the configured password policy.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		db:       db,
		password: utils.DefaultPasswordPolicy(config.Get().PasswordMinLength),
	}
}

// Register creates a local account. The plaintext password never reaches
// storage or the logs; a duplicate email or a weak password is an input
// error, not a conflict.
func (u *UserController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email: invalid address")
		return
	}

	name := strings.TrimSpace(utils.Sanitize(req.Name))
	if err := u.password.Validate(req.Password, email, name); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password: "+err.Error())
		return
	}

	var existing models.User
	if err := u.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "email: already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{Email: email, Name: name, PasswordHash: hash}
	if err := u.db.Create(&user).Error; err != nil {
		// a concurrent registration can slip past the lookup above and
		// land on the unique index instead
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, 40004, "email: already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	utils.Created(ctx, gin.H{"email": user.Email, "name": user.Name})
}

// Token verifies credentials and issues an opaque bearer token. Unknown
// email and wrong password share one message so the endpoint does not
// reveal which addresses are registered.
func (u *UserController) Token(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := u.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "unable to authenticate with provided credentials")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "unable to authenticate with provided credentials")
		return
	}

	token, err := utils.IssueToken(user.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{"token": token})
}

// Logout revokes the presented token immediately.
func (u *UserController) Logout(ctx *gin.Context) {
	if token, ok := middleware.BearerToken(ctx); ok {
		utils.RevokeToken(token)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (u *UserController) Me(ctx *gin.Context) {
	user, ok := u.currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"email": user.Email, "name": user.Name})
}

// UpdateMe partially updates name and password, the only mutable profile
// fields. A supplied password passes the same strength policy as at
// registration and is re-hashed.
func (u *UserController) UpdateMe(ctx *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}

	user, ok := u.currentUser(ctx)
	if !ok {
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(utils.Sanitize(*req.Name))
	}
	if req.Password != nil {
		if err := u.password.Validate(*req.Password, user.Email, user.Name); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40008, "password: "+err.Error())
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update profile")
		return
	}

	utils.Success(ctx, gin.H{"email": user.Email, "name": user.Name})
}

func (u *UserController) currentUser(ctx *gin.Context) (models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return models.User{}, false
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unknown user")
		return models.User{}, false
	}
	return user, true
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
