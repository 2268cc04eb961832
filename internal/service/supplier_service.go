package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/betonpro/tradelinkpro/internal/model"
	"github.com/betonpro/tradelinkpro/internal/repository"
	"github.com/betonpro/tradelinkpro/pkg/apperror"
	"github.com/betonpro/tradelinkpro/pkg/qr"
	"github.com/betonpro/tradelinkpro/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierInput struct {
	Name        string `form:"name" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Description string `form:"description"`
	Contact     string `form:"contact"`
	Whatsapp    string `form:"whatsapp"`
	Wechat      string `form:"wechat"`
	Rating      string `form:"rating"`
}

// Upload is a pending file from a multipart form. A nil Upload means
// the field was left empty.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// SupplierDetail is the detail view payload; the QR filenames are
// regenerated on every call.
type SupplierDetail struct {
	Supplier   *model.Supplier
	WhatsappQR string
	WechatQR   string
}

type SupplierService interface {
	List(ctx context.Context, ownerID uuid.UUID, q repository.ListQuery) ([]*model.Supplier, error)
	Detail(ctx context.Context, id, callerID uuid.UUID) (*SupplierDetail, error)
	Get(ctx context.Context, id, callerID uuid.UUID) (*model.Supplier, error)
	Create(ctx context.Context, ownerID uuid.UUID, input SupplierInput, photo, catalog *Upload) (*model.Supplier, error)
	Update(ctx context.Context, id, callerID uuid.UUID, input SupplierInput, photo, catalog *Upload) error
	Delete(ctx context.Context, id, callerID uuid.UUID) error
}

type supplierService struct {
	repo  repository.SupplierRepository
	store storage.FileStorage
	qrGen *qr.Generator
}

func NewSupplierService(repo repository.SupplierRepository, store storage.FileStorage, qrGen *qr.Generator) SupplierService {
	return &supplierService{
		repo:  repo,
		store: store,
		qrGen: qrGen,
	}
}

func (s *supplierService) List(ctx context.Context, ownerID uuid.UUID, q repository.ListQuery) ([]*model.Supplier, error) {
	return s.repo.List(ctx, ownerID, q)
}

func (s *supplierService) Get(ctx context.Context, id, callerID uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if !supplier.OwnedBy(callerID) {
		return nil, apperror.ErrForbidden
	}
	return supplier, nil
}

func (s *supplierService) Detail(ctx context.Context, id, callerID uuid.UUID) (*SupplierDetail, error) {
	supplier, err := s.Get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	detail := &SupplierDetail{Supplier: supplier}

	if data := supplier.WhatsappLink; data != "" {
		// A bare number becomes a wa.me click-to-chat link.
		if isDigits(data) {
			data = "https://wa.me/" + data
		}
		name, err := s.qrGen.Generate(data, fmt.Sprintf("whatsapp_qr_%s.png", supplier.ID))
		if err != nil {
			return nil, err
		}
		detail.WhatsappQR = name
	}

	if data := supplier.WechatLink; data != "" {
		name, err := s.qrGen.Generate(data, fmt.Sprintf("wechat_qr_%s.png", supplier.ID))
		if err != nil {
			return nil, err
		}
		detail.WechatQR = name
	}

	return detail, nil
}

func (s *supplierService) Create(ctx context.Context, ownerID uuid.UUID, input SupplierInput, photo, catalog *Upload) (*model.Supplier, error) {
	photoName, err := s.saveUpload(photo)
	if err != nil {
		return nil, err
	}
	catalogName, err := s.saveUpload(catalog)
	if err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		UserID:          &ownerID,
		Name:            input.Name,
		Category:        input.Category,
		Description:     input.Description,
		Contact:         input.Contact,
		WhatsappLink:    input.Whatsapp,
		WechatLink:      input.Wechat,
		Rating:          input.Rating,
		PhotoFilename:   photoName,
		CatalogFilename: catalogName,
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id, callerID uuid.UUID, input SupplierInput, photo, catalog *Upload) error {
	supplier, err := s.Get(ctx, id, callerID)
	if err != nil {
		return err
	}

	if photo != nil && photo.Filename != "" {
		if name, err := s.replaceFile(supplier.PhotoFilename, photo); err != nil {
			return err
		} else if name != "" {
			supplier.PhotoFilename = name
		}
	}
	if catalog != nil && catalog.Filename != "" {
		if name, err := s.replaceFile(supplier.CatalogFilename, catalog); err != nil {
			return err
		} else if name != "" {
			supplier.CatalogFilename = name
		}
	}

	supplier.Name = input.Name
	supplier.Category = input.Category
	supplier.Description = input.Description
	supplier.Contact = input.Contact
	supplier.WhatsappLink = input.Whatsapp
	supplier.WechatLink = input.Wechat
	supplier.Rating = input.Rating

	return s.repo.Update(ctx, supplier)
}

func (s *supplierService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	supplier, err := s.Get(ctx, id, callerID)
	if err != nil {
		return err
	}

	for _, name := range []string{supplier.PhotoFilename, supplier.CatalogFilename} {
		s.removeFile(name)
	}

	// QR images are regenerated on each detail view and may have piled
	// up under numbered suffixes.
	for _, prefix := range []string{
		fmt.Sprintf("whatsapp_qr_%s", supplier.ID),
		fmt.Sprintf("wechat_qr_%s", supplier.ID),
	} {
		names, err := s.store.ListPrefix(prefix)
		if err != nil {
			log.Printf("failed to scan qr files for %s: %v", supplier.ID, err)
			continue
		}
		for _, name := range names {
			s.removeFile(name)
		}
	}

	return s.repo.Delete(ctx, supplier.ID)
}

func (s *supplierService) saveUpload(upload *Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	return s.store.Save(upload.Filename, upload.Reader)
}

// replaceFile stores the new file first and removes the previous one
// only once the store accepted the replacement. A rejected upload
// (empty marker) keeps the old file so the row never points at a
// deleted file. The delete is non-fatal; the filesystem may already
// be missing it.
func (s *supplierService) replaceFile(oldName string, upload *Upload) (string, error) {
	name, err := s.saveUpload(upload)
	if err != nil || name == "" {
		return name, err
	}
	if oldName != "" {
		s.removeFile(oldName)
	}
	return name, nil
}

func (s *supplierService) removeFile(name string) {
	if name == "" {
		return
	}
	if err := s.store.Delete(name); err != nil {
		log.Printf("failed to delete stored file %s: %v", name, err)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) == -1
}
