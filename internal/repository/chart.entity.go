package repository

import (
	"time"

	"github.com/booksbridge/books-gateway/internal/model"
)

type BusinessEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	Slug      string    `db:"slug"       gorm:"column:slug;not null;uniqueIndex"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (BusinessEntity) TableName() string {
	return "businesses"
}

func toBusinessModel(e *BusinessEntity) *model.Business {
	if e == nil {
		return nil
	}
	return &model.Business{
		ID:        e.ID,
		Name:      e.Name,
		Slug:      e.Slug,
		CreatedAt: e.CreatedAt,
	}
}

type CategoryEntity struct {
	ID                  int64  `db:"id"                    gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID          int64  `db:"business_id"           gorm:"column:business_id;not null;index"`
	Name                string `db:"name"                  gorm:"column:name;not null"`
	Slug                string `db:"slug"                  gorm:"column:slug;not null"`
	Type                string `db:"type"                  gorm:"column:type;not null"`
	IsActive            bool   `db:"is_active"             gorm:"column:is_active;not null;default:true"`
	SortOrder           int    `db:"sort_order"            gorm:"column:sort_order;not null;default:0"`
	BookReports         bool   `db:"book_reports"          gorm:"column:book_reports;not null;default:true"`
	TaxReports          bool   `db:"tax_reports"           gorm:"column:tax_reports;not null;default:true"`
	ScheduleCLine       string `db:"schedule_c_line"       gorm:"column:schedule_c_line;not null;default:''"`
	ReportGroup         string `db:"report_group"          gorm:"column:report_group;not null;default:''"`
	IsReturnsAllowances bool   `db:"is_returns_allowances" gorm:"column:is_returns_allowances;not null;default:false"`
}

func (CategoryEntity) TableName() string {
	return "categories"
}

func toCategoryEntity(m *model.Category) *CategoryEntity {
	if m == nil {
		return nil
	}
	return &CategoryEntity{
		ID:                  m.ID,
		BusinessID:          m.BusinessID,
		Name:                m.Name,
		Slug:                m.Slug,
		Type:                string(m.Type),
		IsActive:            m.IsActive,
		SortOrder:           m.SortOrder,
		BookReports:         m.BookReports,
		TaxReports:          m.TaxReports,
		ScheduleCLine:       m.ScheduleCLine,
		ReportGroup:         m.ReportGroup,
		IsReturnsAllowances: m.IsReturnsAllowances,
	}
}

func toCategoryModel(e *CategoryEntity) *model.Category {
	if e == nil {
		return nil
	}
	return &model.Category{
		ID:                  e.ID,
		BusinessID:          e.BusinessID,
		Name:                e.Name,
		Slug:                e.Slug,
		Type:                model.CategoryType(e.Type),
		IsActive:            e.IsActive,
		SortOrder:           e.SortOrder,
		BookReports:         e.BookReports,
		TaxReports:          e.TaxReports,
		ScheduleCLine:       e.ScheduleCLine,
		ReportGroup:         e.ReportGroup,
		IsReturnsAllowances: e.IsReturnsAllowances,
	}
}

func toCategoryModels(entities []*CategoryEntity) []*model.Category {
	if entities == nil {
		return nil
	}
	models := make([]*model.Category, len(entities))
	for i, e := range entities {
		models[i] = toCategoryModel(e)
	}
	return models
}

type SubCategoryEntity struct {
	ID                      int64  `db:"id"                         gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID              int64  `db:"business_id"                gorm:"column:business_id;not null;index"`
	CategoryID              int64  `db:"category_id"                gorm:"column:category_id;not null;index"`
	Name                    string `db:"name"                       gorm:"column:name;not null"`
	Slug                    string `db:"slug"                       gorm:"column:slug;not null"`
	IsActive                bool   `db:"is_active"                  gorm:"column:is_active;not null;default:true"`
	SortOrder               int    `db:"sort_order"                 gorm:"column:sort_order;not null;default:0"`
	BookEnabled             bool   `db:"book_enabled"               gorm:"column:book_enabled;not null;default:true"`
	TaxEnabled              bool   `db:"tax_enabled"                gorm:"column:tax_enabled;not null;default:true"`
	ScheduleCLine           string `db:"schedule_c_line"            gorm:"column:schedule_c_line;not null;default:''"`
	DeductionRule           string `db:"deduction_rule"             gorm:"column:deduction_rule;not null;default:'full'"`
	IsFuel                  bool   `db:"is_fuel"                    gorm:"column:is_fuel;not null;default:false"`
	Is1099ReportableDefault bool   `db:"is_1099_reportable_default" gorm:"column:is_1099_reportable_default;not null;default:false"`
	IsCapitalizable         bool   `db:"is_capitalizable"           gorm:"column:is_capitalizable;not null;default:false"`
	RequiresPayee           bool   `db:"requires_payee"             gorm:"column:requires_payee;not null;default:false"`
	PayeeRole               string `db:"payee_role"                 gorm:"column:payee_role;not null;default:'any'"`
	RequiresTransport       bool   `db:"requires_transport"         gorm:"column:requires_transport;not null;default:false"`
	RequiresVehicle         bool   `db:"requires_vehicle"           gorm:"column:requires_vehicle;not null;default:false"`
}

func (SubCategoryEntity) TableName() string {
	return "subcategories"
}

func toSubCategoryEntity(m *model.SubCategory) *SubCategoryEntity {
	if m == nil {
		return nil
	}
	return &SubCategoryEntity{
		ID:                      m.ID,
		BusinessID:              m.BusinessID,
		CategoryID:              m.CategoryID,
		Name:                    m.Name,
		Slug:                    m.Slug,
		IsActive:                m.IsActive,
		SortOrder:               m.SortOrder,
		BookEnabled:             m.BookEnabled,
		TaxEnabled:              m.TaxEnabled,
		ScheduleCLine:           m.ScheduleCLine,
		DeductionRule:           string(m.DeductionRule),
		IsFuel:                  m.IsFuel,
		Is1099ReportableDefault: m.Is1099ReportableDefault,
		IsCapitalizable:         m.IsCapitalizable,
		RequiresPayee:           m.RequiresPayee,
		PayeeRole:               string(m.PayeeRole),
		RequiresTransport:       m.RequiresTransport,
		RequiresVehicle:         m.RequiresVehicle,
	}
}

func toSubCategoryModel(e *SubCategoryEntity) *model.SubCategory {
	if e == nil {
		return nil
	}
	return &model.SubCategory{
		ID:                      e.ID,
		BusinessID:              e.BusinessID,
		CategoryID:              e.CategoryID,
		Name:                    e.Name,
		Slug:                    e.Slug,
		IsActive:                e.IsActive,
		SortOrder:               e.SortOrder,
		BookEnabled:             e.BookEnabled,
		TaxEnabled:              e.TaxEnabled,
		ScheduleCLine:           e.ScheduleCLine,
		DeductionRule:           model.DeductionRule(e.DeductionRule),
		IsFuel:                  e.IsFuel,
		Is1099ReportableDefault: e.Is1099ReportableDefault,
		IsCapitalizable:         e.IsCapitalizable,
		RequiresPayee:           e.RequiresPayee,
		PayeeRole:               model.PayeeRole(e.PayeeRole),
		RequiresTransport:       e.RequiresTransport,
		RequiresVehicle:         e.RequiresVehicle,
	}
}

func toSubCategoryModels(entities []*SubCategoryEntity) []*model.SubCategory {
	if entities == nil {
		return nil
	}
	models := make([]*model.SubCategory, len(entities))
	for i, e := range entities {
		models[i] = toSubCategoryModel(e)
	}
	return models
}
