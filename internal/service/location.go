package service

import (
	"errors"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// FallbackLocationID 是删除地点时居民被重新安置的目标。
const FallbackLocationID = 1

// LocationService 维护地点图：四个方向的有向边成对出现，
// 所有多语句序列都包在单个事务里，避免部分失败留下不对称的图。
type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

// LocationInput 是创建/编辑表单提交的字段。
type LocationInput struct {
	Name        string
	Description string
	ImageURL    string
	NorthID     *uint
	SouthID     *uint
	EastID      *uint
	WestID      *uint
}

// 方向与其数据库列、反向列的对应关系。
var directions = []struct {
	Dir     string
	Column  string
	Inverse string
}{
	{"north", "north_id", "south_id"},
	{"south", "south_id", "north_id"},
	{"east", "east_id", "west_id"},
	{"west", "west_id", "east_id"},
}

func (in *LocationInput) edge(dir string) *uint {
	switch dir {
	case "north":
		return in.NorthID
	case "south":
		return in.SouthID
	case "east":
		return in.EastID
	case "west":
		return in.WestID
	}
	return nil
}

func edgeOf(loc *models.Location, dir string) *uint {
	switch dir {
	case "north":
		return loc.NorthID
	case "south":
		return loc.SouthID
	case "east":
		return loc.EastID
	case "west":
		return loc.WestID
	}
	return nil
}

// Create 插入新地点，并为每条给出的边在目标节点上写回反向边
// （north ⇒ 目标的 south 指回新节点，依此类推）。
func (s *LocationService) Create(in LocationInput) (*models.Location, error) {
	if in.Name == "" || in.Description == "" {
		return nil, validation("Nome e descrizione sono obbligatori.")
	}
	loc := models.Location{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		NorthID:     in.NorthID,
		SouthID:     in.SouthID,
		EastID:      in.EastID,
		WestID:      in.WestID,
		IsPublic:    true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&loc).Error; err != nil {
			return err
		}
		return linkBack(tx, loc.ID, &in)
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Update 先断开旧邻居仍指回本节点的反向边，再写入新字段，
// 最后按新边重新写回反向边。先断后连，避免换方向重连同一邻居时
// 出现短暂的双重链接。
func (s *LocationService) Update(id uint, in LocationInput) error {
	if in.Name == "" || in.Description == "" {
		return validation("Nome e descrizione sono obbligatori.")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var old models.Location
		if err := tx.First(&old, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		for _, d := range directions {
			oldEdge := edgeOf(&old, d.Dir)
			if oldEdge == nil {
				continue
			}
			err := tx.Model(&models.Location{}).
				Where("id = ? AND "+d.Inverse+" = ?", *oldEdge, id).
				Update(d.Inverse, nil).Error
			if err != nil {
				return err
			}
		}
		err := tx.Model(&models.Location{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"image_url":   in.ImageURL,
			"north_id":    in.NorthID,
			"south_id":    in.SouthID,
			"east_id":     in.EastID,
			"west_id":     in.WestID,
		}).Error
		if err != nil {
			return err
		}
		return linkBack(tx, id, &in)
	})
}

// Delete 把住在该地点的角色移回 1 号地点，清空所有指向它的入边，
// 再删除行本身。
func (s *LocationService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Character{}).
			Where("current_location_id = ?", id).
			Update("current_location_id", FallbackLocationID).Error
		if err != nil {
			return err
		}
		for _, d := range directions {
			err := tx.Model(&models.Location{}).
				Where(d.Column+" = ?", id).
				Update(d.Column, nil).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(&models.Location{}, id).Error
	})
}

func linkBack(tx *gorm.DB, id uint, in *LocationInput) error {
	for _, d := range directions {
		target := in.edge(d.Dir)
		if target == nil {
			continue
		}
		err := tx.Model(&models.Location{}).
			Where("id = ?", *target).
			Update(d.Inverse, id).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *LocationService) Get(id uint) (*models.Location, error) {
	var loc models.Location
	if err := s.db.First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// List 返回全部地点，按名称排序。
func (s *LocationService) List() ([]models.Location, error) {
	var locs []models.Location
	if err := s.db.Order("name").Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// ListOthers 返回除指定地点外的全部地点，用于编辑表单的下拉框。
func (s *LocationService) ListOthers(excludeID uint) ([]models.Location, error) {
	var locs []models.Location
	q := s.db.Select("id", "name").Order("name")
	if excludeID > 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// LocationRef 是方向连接在页面上需要的最小信息。
type LocationRef struct {
	ID   uint
	Name string
}

// Connections 解析一个地点四个方向的邻居，空边对应 nil。
func (s *LocationService) Connections(loc *models.Location) (map[string]*LocationRef, error) {
	out := make(map[string]*LocationRef, 4)
	for _, d := range directions {
		edge := edgeOf(loc, d.Dir)
		if edge == nil {
			out[d.Dir] = nil
			continue
		}
		var neighbor models.Location
		if err := s.db.Select("id", "name").First(&neighbor, *edge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out[d.Dir] = nil
				continue
			}
			return nil, err
		}
		out[d.Dir] = &LocationRef{ID: neighbor.ID, Name: neighbor.Name}
	}
	return out, nil
}
