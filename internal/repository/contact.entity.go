package repository

import (
	"github.com/booksbridge/books-gateway/internal/model"
)

type ContactEntity struct {
	ID           int64  `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID   int64  `db:"business_id"   gorm:"column:business_id;not null;index"`
	DisplayName  string `db:"display_name"  gorm:"column:display_name;not null"`
	Email        string `db:"email"         gorm:"column:email;not null;default:''"`
	Phone        string `db:"phone"         gorm:"column:phone;not null;default:''"`
	Address1     string `db:"address1"      gorm:"column:address1;not null;default:''"`
	Address2     string `db:"address2"      gorm:"column:address2;not null;default:''"`
	City         string `db:"city"          gorm:"column:city;not null;default:''"`
	State        string `db:"state"         gorm:"column:state;not null;default:''"`
	PostalCode   string `db:"postal_code"   gorm:"column:postal_code;not null;default:''"`
	Country      string `db:"country"       gorm:"column:country;not null;default:''"`
	IsVendor     bool   `db:"is_vendor"     gorm:"column:is_vendor;not null;default:false"`
	IsCustomer   bool   `db:"is_customer"   gorm:"column:is_customer;not null;default:false"`
	IsContractor bool   `db:"is_contractor" gorm:"column:is_contractor;not null;default:false"`
}

func (ContactEntity) TableName() string {
	return "contacts"
}

func toContactEntity(m *model.Contact) *ContactEntity {
	if m == nil {
		return nil
	}
	return &ContactEntity{
		ID:           m.ID,
		BusinessID:   m.BusinessID,
		DisplayName:  m.DisplayName,
		Email:        m.Email,
		Phone:        m.Phone,
		Address1:     m.Address1,
		Address2:     m.Address2,
		City:         m.City,
		State:        m.State,
		PostalCode:   m.PostalCode,
		Country:      m.Country,
		IsVendor:     m.IsVendor,
		IsCustomer:   m.IsCustomer,
		IsContractor: m.IsContractor,
	}
}

func toContactModel(e *ContactEntity) *model.Contact {
	if e == nil {
		return nil
	}
	return &model.Contact{
		ID:           e.ID,
		BusinessID:   e.BusinessID,
		DisplayName:  e.DisplayName,
		Email:        e.Email,
		Phone:        e.Phone,
		Address1:     e.Address1,
		Address2:     e.Address2,
		City:         e.City,
		State:        e.State,
		PostalCode:   e.PostalCode,
		Country:      e.Country,
		IsVendor:     e.IsVendor,
		IsCustomer:   e.IsCustomer,
		IsContractor: e.IsContractor,
	}
}

type JobEntity struct {
	ID         int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	BusinessID int64  `db:"business_id" gorm:"column:business_id;not null;index"`
	Title      string `db:"title"       gorm:"column:title;not null"`
	Year       int    `db:"year"        gorm:"column:year;not null"`
	IsActive   bool   `db:"is_active"   gorm:"column:is_active;not null;default:true"`
}

func (JobEntity) TableName() string {
	return "jobs"
}

func toJobModel(e *JobEntity) *model.Job {
	if e == nil {
		return nil
	}
	return &model.Job{
		ID:         e.ID,
		BusinessID: e.BusinessID,
		Title:      e.Title,
		Year:       e.Year,
		IsActive:   e.IsActive,
	}
}
