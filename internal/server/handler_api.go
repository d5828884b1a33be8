package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/metrics"
	"github.com/simfon/fate-pbc-rpg/internal/service"
)

// PostMessage 发送聊天消息后跳回来源页面。
func (h *Handler) PostMessage(c *gin.Context) {
	in := service.PostInput{
		CharacterID: uint(formInt(c, "character_id")),
		LocationID:  uint(formInt(c, "location_id")),
		Content:     c.PostForm("content"),
		IsAction:    formBool(c, "is_action"),
		IsOOC:       formBool(c, "is_ooc"),
		IsDestiny:   formBool(c, "is_destiny"),
	}
	err := h.msgSvc.Post(auth.GetUserID(c), auth.GetRole(c), in)
	if err != nil {
		if msg, ok := service.AsValidation(err); ok {
			c.String(http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, service.ErrNotOwner) {
			c.String(http.StatusForbidden, "Non autorizzato")
			return
		}
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("post message")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	metrics.MessagesPostedTotal.Inc()
	redirectBack(c, "/game")
}

// PollMessages 轮询消息流分片。after 游标之后的增量，或首屏 25 条。
func (h *Handler) PollMessages(c *gin.Context) {
	locationID := paramUint(c, "locationId")
	var after uint
	if raw := c.Query("after"); raw != "" && raw != "0" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			after = uint(v)
		}
	}
	messages, err := h.msgSvc.Feed(locationID, after, timeNow())
	if err != nil {
		log.Error().Err(err).Uint("location_id", locationID).Msg("poll messages")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	lastID := after
	if len(messages) > 0 {
		lastID = messages[len(messages)-1].ID
	}
	c.HTML(http.StatusOK, "partial_messages.html", gin.H{
		"Messages":      messages,
		"LastMessageID": strconv.FormatUint(uint64(lastID), 10),
	})
}

// PollPresent 轮询在场角色分片。
func (h *Handler) PollPresent(c *gin.Context) {
	locationID := paramUint(c, "locationId")
	present, err := h.msgSvc.Present(locationID, timeNow())
	if err != nil {
		log.Error().Err(err).Uint("location_id", locationID).Msg("poll present")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	c.HTML(http.StatusOK, "partial_present.html", gin.H{"PresentCharacters": present})
}

// FatePoint 花费或获得命运点。
func (h *Handler) FatePoint(c *gin.Context) {
	err := h.actSvc.Fate(
		paramUint(c, "id"),
		auth.GetUserID(c),
		c.PostForm("action"),
		uint(formInt(c, "location_id")),
	)
	if err != nil {
		h.actionError(c, err, "fate point")
		return
	}
	redirectBack(c, "/game")
}

// ToggleStress 翻转压力格。
func (h *Handler) ToggleStress(c *gin.Context) {
	box, _ := strconv.Atoi(c.Param("box"))
	err := h.actSvc.ToggleStress(
		paramUint(c, "id"),
		auth.GetUserID(c),
		box,
		uint(formInt(c, "location_id")),
	)
	if err != nil {
		h.actionError(c, err, "toggle stress")
		return
	}
	redirectBack(c, "/game")
}

// Roll 掷 4dF 并把结果写入消息流。
func (h *Handler) Roll(c *gin.Context) {
	err := h.actSvc.Roll(
		uint(formInt(c, "character_id")),
		auth.GetUserID(c),
		c.PostForm("approach"),
		c.PostForm("modifier"),
		uint(formInt(c, "location_id")),
	)
	if err != nil {
		h.actionError(c, err, "roll")
		return
	}
	metrics.DiceRollsTotal.Inc()
	redirectBack(c, "/game")
}

func (h *Handler) actionError(c *gin.Context, err error, op string) {
	if msg, ok := service.AsValidation(err); ok {
		c.String(http.StatusBadRequest, msg)
		return
	}
	if errors.Is(err, service.ErrNotOwner) {
		c.String(http.StatusForbidden, "Non autorizzato")
		return
	}
	log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg(op)
	c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
}
