package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"github.com/simfon/fate-pbc-rpg/internal/service"
)

// AdminDashboard 管理首页，展示核心表的行数统计。
func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := service.CollectStats(h.db)
	if err != nil {
		log.Error().Err(err).Msg("admin stats")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{"Stats": stats})
}

// AdminUsers 用户列表。
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.userSvc.AdminList()
	if err != nil {
		log.Error().Err(err).Msg("admin users")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_users.html", gin.H{"Users": users})
}

// AdminSetRole 修改用户角色。
func (h *Handler) AdminSetRole(c *gin.Context) {
	role := models.Role(c.PostForm("role"))
	if err := h.userSvc.SetRole(paramUint(c, "id"), role); err != nil {
		if msg, ok := service.AsValidation(err); ok {
			c.String(http.StatusBadRequest, msg)
			return
		}
		log.Error().Err(err).Msg("admin set role")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

// AdminGrantDestiny 授予叙事者角色。
func (h *Handler) AdminGrantDestiny(c *gin.Context) {
	h.adminSetRoleTo(c, models.RoleDestiny)
}

// AdminRevokeDestiny 收回叙事者角色。
func (h *Handler) AdminRevokeDestiny(c *gin.Context) {
	h.adminSetRoleTo(c, models.RolePlayer)
}

func (h *Handler) adminSetRoleTo(c *gin.Context, role models.Role) {
	if err := h.userSvc.SetRole(paramUint(c, "id"), role); err != nil {
		log.Error().Err(err).Msg("admin set role")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

// AdminBan 封禁用户。
func (h *Handler) AdminBan(c *gin.Context) {
	h.adminSetBanned(c, true)
}

// AdminUnban 解除封禁。
func (h *Handler) AdminUnban(c *gin.Context) {
	h.adminSetBanned(c, false)
}

func (h *Handler) adminSetBanned(c *gin.Context, banned bool) {
	if err := h.userSvc.SetBanned(paramUint(c, "id"), banned); err != nil {
		log.Error().Err(err).Msg("admin set banned")
		c.String(http.StatusInternalServerError, "Qualcosa è andato storto")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

// AdminLocations 地点列表。
func (h *Handler) AdminLocations(c *gin.Context) {
	locations, err := h.locSvc.List()
	if err != nil {
		log.Error().Err(err).Msg("admin locations")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_locations.html", gin.H{"Locations": locations})
}

// AdminLocationNew 新建地点表单。
func (h *Handler) AdminLocationNew(c *gin.Context) {
	others, err := h.locSvc.ListOthers(0)
	if err != nil {
		log.Error().Err(err).Msg("admin location new")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_location_edit.html", gin.H{"Location": nil, "AllLocations": others, "Error": nil})
}

// AdminLocationEdit 编辑地点表单。
func (h *Handler) AdminLocationEdit(c *gin.Context) {
	id := paramUint(c, "id")
	loc, err := h.locSvc.Get(id)
	if err != nil {
		h.notFound(c, "Locazione non trovata")
		return
	}
	others, err := h.locSvc.ListOthers(id)
	if err != nil {
		log.Error().Err(err).Msg("admin location edit")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_location_edit.html", gin.H{"Location": loc, "AllLocations": others, "Error": nil})
}

func locationInputFromForm(c *gin.Context) service.LocationInput {
	return service.LocationInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		ImageURL:    c.PostForm("image_url"),
		NorthID:     formUintPtr(c, "north_id"),
		SouthID:     formUintPtr(c, "south_id"),
		EastID:      formUintPtr(c, "east_id"),
		WestID:      formUintPtr(c, "west_id"),
	}
}

// AdminLocationCreate 创建地点并写回双向连接。
func (h *Handler) AdminLocationCreate(c *gin.Context) {
	in := locationInputFromForm(c)
	if _, err := h.locSvc.Create(in); err != nil {
		if msg, ok := service.AsValidation(err); ok {
			others, _ := h.locSvc.ListOthers(0)
			c.HTML(http.StatusBadRequest, "admin_location_edit.html", gin.H{"Location": nil, "Form": in, "AllLocations": others, "Error": msg})
			return
		}
		log.Error().Err(err).Msg("admin location create")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/locations")
}

// AdminLocationUpdate 更新地点：先断开旧连接再写回新连接。
func (h *Handler) AdminLocationUpdate(c *gin.Context) {
	id := paramUint(c, "id")
	in := locationInputFromForm(c)
	if err := h.locSvc.Update(id, in); err != nil {
		if msg, ok := service.AsValidation(err); ok {
			others, _ := h.locSvc.ListOthers(id)
			c.HTML(http.StatusBadRequest, "admin_location_edit.html", gin.H{"Location": gin.H{"ID": id}, "Form": in, "AllLocations": others, "Error": msg})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c, "Locazione non trovata")
			return
		}
		log.Error().Err(err).Uint("location_id", id).Msg("admin location update")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/locations")
}

// AdminLocationDelete 删除地点并级联清理入边和居民。
func (h *Handler) AdminLocationDelete(c *gin.Context) {
	id := paramUint(c, "id")
	if err := h.locSvc.Delete(id); err != nil {
		log.Error().Err(err).Uint("location_id", id).Msg("admin location delete")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/locations")
}

// AdminInvites 邀请码列表。
func (h *Handler) AdminInvites(c *gin.Context) {
	invites, err := h.invSvc.List()
	if err != nil {
		log.Error().Err(err).Msg("admin invites")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_invites.html", gin.H{"Invites": invites})
}

// AdminInviteCreate 生成新的邀请码。
func (h *Handler) AdminInviteCreate(c *gin.Context) {
	if _, err := h.invSvc.Create(auth.GetUserID(c)); err != nil {
		log.Error().Err(err).Msg("admin invite create")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/invites")
}

// AdminInviteDelete 删除未用完的邀请码。
func (h *Handler) AdminInviteDelete(c *gin.Context) {
	if err := h.invSvc.Delete(paramUint(c, "id")); err != nil {
		log.Error().Err(err).Msg("admin invite delete")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/invites")
}

// AdminCharacters 角色列表。
func (h *Handler) AdminCharacters(c *gin.Context) {
	characters, err := h.charSvc.AdminList()
	if err != nil {
		log.Error().Err(err).Msg("admin characters")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.HTML(http.StatusOK, "admin_characters.html", gin.H{"Characters": characters})
}

// AdminCharacterEdit 角色编辑表单。
func (h *Handler) AdminCharacterEdit(c *gin.Context) {
	ch, err := h.charSvc.Get(paramUint(c, "id"))
	if err != nil {
		h.notFound(c, "Personaggio non trovato")
		return
	}
	c.HTML(http.StatusOK, "admin_character_edit.html", gin.H{"Character": ch, "Error": nil})
}

// AdminCharacterUpdate 管理员全量覆盖角色游戏状态。
func (h *Handler) AdminCharacterUpdate(c *gin.Context) {
	id := paramUint(c, "id")
	in := service.AdminUpdateInput{
		FatePoints:          formInt(c, "fate_points"),
		Stress1:             formBool(c, "stress_1"),
		Stress2:             formBool(c, "stress_2"),
		Stress3:             formBool(c, "stress_3"),
		MildConsequence:     c.PostForm("mild_consequence"),
		ModerateConsequence: c.PostForm("moderate_consequence"),
		SevereConsequence:   c.PostForm("severe_consequence"),
	}
	if err := h.charSvc.AdminUpdate(id, in); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c, "Personaggio non trovato")
			return
		}
		log.Error().Err(err).Uint("character_id", id).Msg("admin character update")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/game/character/"+strconv.FormatUint(uint64(id), 10))
}

// AdminCharacterDelete 硬删除角色。
func (h *Handler) AdminCharacterDelete(c *gin.Context) {
	if err := h.charSvc.AdminDelete(paramUint(c, "id")); err != nil {
		log.Error().Err(err).Msg("admin character delete")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/characters")
}

// AdminMessages 按地点审查消息历史。
func (h *Handler) AdminMessages(c *gin.Context) {
	locations, err := h.locSvc.ListOthers(0)
	if err != nil {
		log.Error().Err(err).Msg("admin messages locations")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	var messages []service.MessageDTO
	var selected *uint
	if raw := c.Query("location_id"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			id := uint(v)
			selected = &id
			messages, err = h.msgSvc.History(id)
			if err != nil {
				log.Error().Err(err).Uint("location_id", id).Msg("admin messages")
				h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
				return
			}
		}
	}
	c.HTML(http.StatusOK, "admin_messages.html", gin.H{
		"Locations":        locations,
		"Messages":         messages,
		"SelectedLocation": selected,
	})
}

// AdminMessageDelete 删除消息后跳回相应地点的历史页。
func (h *Handler) AdminMessageDelete(c *gin.Context) {
	locationID, err := h.msgSvc.Delete(paramUint(c, "id"))
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		log.Error().Err(err).Msg("admin message delete")
		h.errorPage(c, http.StatusInternalServerError, "Errore", "Qualcosa è andato storto.")
		return
	}
	target := "/admin/messages"
	if locationID > 0 {
		target += "?location_id=" + strconv.FormatUint(uint64(locationID), 10)
	}
	c.Redirect(http.StatusSeeOther, target)
}
