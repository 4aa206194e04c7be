package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

// BackupHandler 负责备份相关接口
type BackupHandler struct {
	DB        *gorm.DB
	Cipher    *util.Cipher
	BackupDir string
	Log       hclog.Logger
}

func NewBackupHandler(db *gorm.DB, cipher *util.Cipher, backupDir string, log hclog.Logger) *BackupHandler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &BackupHandler{DB: db, Cipher: cipher, BackupDir: backupDir, Log: log}
}

// backupData is what gets sealed into a backup file.
type backupData struct {
	ProfileID string                     `json:"profile_id"`
	Created   time.Time                  `json:"created"`
	Entries   map[string]json.RawMessage `json:"entries"`
}

func backupResp(b *models.Backup) gin.H {
	return gin.H{
		"id":         b.ID,
		"file_name":  b.FileName,
		"size":       b.Size,
		"key_count":  b.KeyCount,
		"created_at": b.CreatedAt,
	}
}

// CreateBackup seals every stored key of the profile into a file.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}

	entries, err := s.Profile.Snapshot()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read profile data failed")
		return
	}
	raw, err := json.Marshal(&backupData{ProfileID: s.ProfileID, Created: time.Now(), Entries: entries})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encode backup failed")
		return
	}
	enc, err := h.Cipher.Seal(raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encrypt backup failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create backup dir failed")
		return
	}

	id := uuid.NewString()
	fileName := fmt.Sprintf("backup-%s-%s.bin", s.ProfileID, id)
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write backup failed")
		return
	}

	backup := models.Backup{
		ID:        id,
		ProfileID: s.ProfileID,
		FileName:  fileName,
		Size:      int64(len(enc)),
		KeyCount:  len(entries),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save backup record failed")
		return
	}

	middleware.Describe(c, middleware.KindBackup, "backup created")
	util.Success(c, util.Response{"backup": backupResp(&backup)})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}

	var list []models.Backup
	if err := h.DB.
		Where("profile_id = ?", s.ProfileID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query backups failed")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, backupResp(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// find loads the backup named by :id if it belongs to the profile.
func (h *BackupHandler) find(c *gin.Context, profileID string) (*models.Backup, bool) {
	var backup models.Backup
	if err := h.DB.
		Where("id = ? AND profile_id = ?", c.Param("id"), profileID).
		First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query backup failed")
		}
		return nil, false
	}
	return &backup, true
}

func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	backup, ok := h.find(c, s.ProfileID)
	if !ok {
		return
	}

	// 先删文件，再删记录
	if err := os.Remove(filepath.Join(h.BackupDir, backup.FileName)); err != nil && !os.IsNotExist(err) {
		h.Log.Warn("backup file not removed", "file", backup.FileName, "error", err)
	}
	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete backup record failed")
		return
	}

	middleware.Describe(c, middleware.KindBackup, "backup deleted")
	util.Success(c, util.Response{"message": "deleted"})
}

// RestoreBackup replaces every stored key of the profile with the backup's.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	backup, ok := h.find(c, s.ProfileID)
	if !ok {
		return
	}

	enc, err := os.ReadFile(filepath.Join(h.BackupDir, backup.FileName))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read backup failed")
		return
	}
	raw, err := h.Cipher.Open(enc)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "decrypt backup failed")
		return
	}
	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "decode backup failed")
		return
	}
	if data.ProfileID != s.ProfileID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "backup belongs to another profile")
		return
	}

	if err := s.Profile.Restore(data.Entries); err != nil {
		h.Log.Error("restore failed", "profile", s.ProfileID, "backup", backup.ID, "error", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}

	middleware.Describe(c, middleware.KindBackup, "backup restored")
	util.Success(c, util.Response{
		"message":   "restored",
		"key_count": len(data.Entries),
	})
}
