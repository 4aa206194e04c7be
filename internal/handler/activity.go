package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ActivityHandler 负责活动记录查询接口
type ActivityHandler struct {
	DB       *gorm.DB
	Cipher   *util.Cipher
	PageSize int
}

func NewActivityHandler(db *gorm.DB, cipher *util.Cipher, pageSize int) *ActivityHandler {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &ActivityHandler{DB: db, Cipher: cipher, PageSize: pageSize}
}

type activityResp struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ActivityHandler) toResp(a *models.Activity) activityResp {
	return activityResp{
		ID:        a.ID,
		Kind:      a.Kind,
		Action:    h.Cipher.OpenString(a.ActionEnc),
		Path:      h.Cipher.OpenString(a.PathEnc),
		Method:    a.Method,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		CreatedAt: a.CreatedAt,
	}
}

// Recent returns the newest n activities of the user on this profile.
func (h *ActivityHandler) Recent(profileID, userID string, n int) ([]activityResp, error) {
	var rows []models.Activity
	if err := h.DB.Where("profile_id = ? AND user_id = ?", profileID, userID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]activityResp, 0, len(rows))
	for i := range rows {
		items = append(items, h.toResp(&rows[i]))
	}
	return items, nil
}

// ListActivity 列出当前用户的活动（分页 + 时间 + 类型）
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	s, userID, ok := userOf(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	base := h.DB.Model(&models.Activity{}).Where("profile_id = ? AND user_id = ?", s.ProfileID, userID)

	// start / end 格式 YYYY-MM-DD，end 当天包含在内
	if startStr := c.Query("start"); startStr != "" {
		if err := util.ValidateDate(startStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date")
			return
		}
		start, _ := time.ParseInLocation("2006-01-02", startStr, time.Local)
		base = base.Where("created_at >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		if err := util.ValidateDate(endStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date")
			return
		}
		end, _ := time.ParseInLocation("2006-01-02", endStr, time.Local)
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}
	if kind := c.Query("kind"); kind != "" {
		base = base.Where("kind = ?", kind)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	// past the last page; compared by division so the offset never overflows
	if int64(page-1) >= (total+int64(size)-1)/int64(size) {
		util.Success(c, util.Response{
			"items": []activityResp{},
			"total": total,
			"page":  page,
			"size":  size,
		})
		return
	}
	offset := (page - 1) * size

	var rows []models.Activity
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]activityResp, 0, len(rows))
	for i := range rows {
		items = append(items, h.toResp(&rows[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
