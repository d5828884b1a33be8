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

// GameDashboard 角色选择页；没有角色时直接进入创建流程。
func (h *Handler) GameDashboard(c *gin.Context) {
	chars, err := h.charSvc.ListByUser(auth.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("game dashboard")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	if len(chars) == 0 {
		c.Redirect(http.StatusSeeOther, "/game/character/create")
		return
	}
	type row struct {
		ID           uint
		Name         string
		HighConcept  string
		AvatarURL    string
		FatePoints   int
		LocationName string
	}
	rows := make([]row, 0, len(chars))
	for _, ch := range chars {
		r := row{ID: ch.ID, Name: ch.Name, HighConcept: ch.HighConcept, AvatarURL: ch.AvatarURL, FatePoints: ch.FatePoints}
		if loc, err := h.locSvc.Get(ch.CurrentLocationID); err == nil {
			r.LocationName = loc.Name
		}
		rows = append(rows, r)
	}
	c.HTML(http.StatusOK, "game_dashboard.html", gin.H{"Characters": rows, "Username": auth.GetUsername(c)})
}

func (h *Handler) CharacterCreatePage(c *gin.Context) {
	c.HTML(http.StatusOK, "character_create.html", gin.H{"Error": nil})
}

// CharacterCreate 创建角色，方法值分布必须是 +3,+2,+2,+1,+1,+0。
func (h *Handler) CharacterCreate(c *gin.Context) {
	in := service.CharacterInput{
		Name:        c.PostForm("name"),
		HighConcept: c.PostForm("high_concept"),
		Trouble:     c.PostForm("trouble"),
		AvatarURL:   c.PostForm("avatar_url"),
		Careful:     formInt(c, "careful"),
		Clever:      formInt(c, "clever"),
		Flashy:      formInt(c, "flashy"),
		Forceful:    formInt(c, "forceful"),
		Quick:       formInt(c, "quick"),
		Sneaky:      formInt(c, "sneaky"),
	}
	if _, err := h.charSvc.Create(auth.GetUserID(c), in); err != nil {
		if msg, ok := service.AsValidation(err); ok {
			c.HTML(http.StatusBadRequest, "character_create.html", gin.H{"Error": msg})
			return
		}
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("character create")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/game")
}

// CharacterView 角色卡页面，任何登录用户可见，编辑入口只给管理员。
func (h *Handler) CharacterView(c *gin.Context) {
	ch, err := h.charSvc.Get(paramUint(c, "id"))
	if err != nil {
		h.notFound(c, "Questo personaggio non esiste nei registri.")
		return
	}
	locationName := ""
	if loc, err := h.locSvc.Get(ch.CurrentLocationID); err == nil {
		locationName = loc.Name
	}
	c.HTML(http.StatusOK, "character_view.html", gin.H{
		"Character":    ch,
		"LocationName": locationName,
		"IsOwner":      ch.UserID == auth.GetUserID(c),
		"CanEdit":      auth.GetRole(c).CanManage(),
	})
}

// Play 游戏主界面：地点、连接、在场角色和消息流首屏。
func (h *Handler) Play(c *gin.Context) {
	ch, err := h.charSvc.GetOwned(paramUint(c, "characterId"), auth.GetUserID(c))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/game")
		return
	}
	loc, err := h.locSvc.Get(ch.CurrentLocationID)
	if err != nil {
		h.notFound(c, "Questa locazione si è persa nelle nebbie del tempo.")
		return
	}
	connections, err := h.locSvc.Connections(loc)
	if err != nil {
		log.Error().Err(err).Uint("location_id", loc.ID).Msg("play connections")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	present, err := h.msgSvc.Present(loc.ID, timeNow())
	if err != nil {
		log.Error().Err(err).Uint("location_id", loc.ID).Msg("play present")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	messages, err := h.msgSvc.Recent(loc.ID, 50)
	if err != nil {
		log.Error().Err(err).Uint("location_id", loc.ID).Msg("play messages")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	lastID := uint(0)
	if len(messages) > 0 {
		lastID = messages[len(messages)-1].ID
	}
	c.HTML(http.StatusOK, "play.html", gin.H{
		"Character":         ch,
		"Location":          loc,
		"Connections":       connections,
		"PresentCharacters": present,
		"Messages":          messages,
		"LastMessageID":     strconv.FormatUint(uint64(lastID), 10),
		"IsDestiny":         auth.GetRole(c).CanNarrate(),
	})
}

// Move 沿指定方向移动角色后回到游戏页面。
func (h *Handler) Move(c *gin.Context) {
	characterID := paramUint(c, "characterId")
	direction := c.Param("direction")
	err := h.charSvc.Move(characterID, auth.GetUserID(c), direction)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			c.String(http.StatusForbidden, "Non autorizzato")
		case errors.Is(err, service.ErrInvalidMove):
			c.String(http.StatusBadRequest, "Direzione non valida")
		default:
			log.Error().Err(err).Uint("character_id", characterID).Str("direction", direction).Msg("move")
			c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		}
		return
	}
	metrics.CharacterMovesTotal.Inc()
	c.Redirect(http.StatusSeeOther, "/game/play/"+strconv.FormatUint(uint64(characterID), 10))
}
