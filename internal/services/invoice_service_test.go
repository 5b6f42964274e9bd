package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booksbridge/books-gateway/internal/apperr"
	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/repository"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceItem) (*model.Invoice, error) {
	args := m.Called(ctx, inv, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetForUpdate(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(*model.Invoice) *model.Invoice); ok {
		return fn(inv), args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error) {
	args := m.Called(ctx, businessID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListItems(ctx context.Context, businessID, invoiceID int64) ([]model.InvoiceItem, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InvoiceItem), args.Error(1)
}

func (m *MockInvoiceRepository) MaxNonSuffixedNumber(ctx context.Context, businessID int64, year int) (string, error) {
	args := m.Called(ctx, businessID, year)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) NumbersWithPrefix(ctx context.Context, businessID int64, base string) ([]string, error) {
	args := m.Called(ctx, businessID, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) SavePDF(ctx context.Context, businessID, invoiceID int64, pdf []byte) error {
	args := m.Called(ctx, businessID, invoiceID, pdf)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error) {
	args := m.Called(ctx, businessID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockInvoiceRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) AllocateNext(ctx context.Context, businessID int64, year int) (int, error) {
	args := m.Called(ctx, businessID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockCounterRepository) BumpTo(ctx context.Context, businessID int64, year int, seq int) error {
	args := m.Called(ctx, businessID, year, seq)
	return args.Error(0)
}

func (m *MockCounterRepository) Peek(ctx context.Context, businessID int64, year int) (*model.InvoiceCounter, error) {
	args := m.Called(ctx, businessID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InvoiceCounter), args.Error(1)
}

type MockContactDirectory struct {
	mock.Mock
}

func (m *MockContactDirectory) Get(ctx context.Context, businessID, contactID int64) (*model.Contact, error) {
	args := m.Called(ctx, businessID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *MockContactDirectory) GetJob(ctx context.Context, businessID, jobID int64) (*model.Job, error) {
	args := m.Called(ctx, businessID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

type MockChartReader struct {
	mock.Mock
}

func (m *MockChartReader) GetCategory(ctx context.Context, businessID, categoryID int64) (*model.Category, error) {
	args := m.Called(ctx, businessID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockChartReader) GetSubCategory(ctx context.Context, businessID, subCategoryID int64) (*model.SubCategory, error) {
	args := m.Called(ctx, businessID, subCategoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubCategory), args.Error(1)
}

type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, inv model.Invoice, items []model.InvoiceItem) ([]byte, error) {
	args := m.Called(ctx, inv, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type invoiceFixture struct {
	invoiceRepo *MockInvoiceRepository
	counterRepo *MockCounterRepository
	contactRepo *MockContactDirectory
	chartRepo   *MockChartReader
	ledgerRepo  *MockLedgerWriter
	renderer    *MockRenderer
	service     *InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo: new(MockInvoiceRepository),
		counterRepo: new(MockCounterRepository),
		contactRepo: new(MockContactDirectory),
		chartRepo:   new(MockChartReader),
		ledgerRepo:  new(MockLedgerWriter),
		renderer:    new(MockRenderer),
	}
	f.service = NewInvoiceService(f.invoiceRepo, f.counterRepo, f.contactRepo, f.chartRepo, f.ledgerRepo, f.renderer, nil)
	f.service.SetClock(func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) })
	return f
}

func (f *invoiceFixture) expectTx(ctx context.Context) {
	f.invoiceRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
}

func issueDate2025() time.Time {
	return time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
}

// echoUpdate makes a mocked Update return whatever invoice it was given.
var echoUpdate = func(inv *model.Invoice) *model.Invoice { return inv }

var assertErr = errors.New("boom")

func errContactMissing() error { return repository.ErrContactNotFound }

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "250007", FormatInvoiceNumber(2025, 7))
	assert.Equal(t, "260123", FormatInvoiceNumber(2026, 123))
	assert.Equal(t, "009999", FormatInvoiceNumber(2100, 9999))
}

func TestInvoiceService_AllocateNextNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("formats year prefix and padded sequence", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.counterRepo.On("AllocateNext", mock.Anything, int64(1), 2025).Return(7, nil)

		n, err := f.service.AllocateNextNumber(ctx, 1, issueDate2025())
		require.NoError(t, err)
		assert.Equal(t, "250007", n)
	})

	t.Run("exhausted past 9999", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.counterRepo.On("AllocateNext", mock.Anything, int64(1), 2025).Return(10000, nil)

		_, err := f.service.AllocateNextNumber(ctx, 1, issueDate2025())
		assert.ErrorIs(t, err, apperr.ErrExhausted)
	})
}

func TestInvoiceService_PreviewNextNumber(t *testing.T) {
	ctx := context.Background()
	f := newInvoiceFixture()
	f.counterRepo.On("Peek", ctx, int64(1), 2025).Return(&model.InvoiceCounter{BusinessID: 1, Year: 2025, LastSeq: 41}, nil)

	n, err := f.service.PreviewNextNumber(ctx, 1, issueDate2025())
	require.NoError(t, err)
	assert.Equal(t, "250042", n)
	f.counterRepo.AssertNotCalled(t, "AllocateNext", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_ValidateManualNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad formats", func(t *testing.T) {
		f := newInvoiceFixture()
		for _, bad := range []string{"", "25001", "2500123", "250001a", "25000x"} {
			err := f.service.ValidateManualNumber(ctx, 1, issueDate2025(), bad)
			assert.ErrorIs(t, err, apperr.ErrValidation, "candidate %q", bad)
		}
	})

	t.Run("rejects wrong year prefix", func(t *testing.T) {
		f := newInvoiceFixture()
		err := f.service.ValidateManualNumber(ctx, 1, issueDate2025(), "240009")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("must exceed the issued maximum", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoiceRepo.On("MaxNonSuffixedNumber", ctx, int64(1), 2025).Return("250007", nil)

		assert.ErrorIs(t, f.service.ValidateManualNumber(ctx, 1, issueDate2025(), "250007"), apperr.ErrValidation)
		assert.ErrorIs(t, f.service.ValidateManualNumber(ctx, 1, issueDate2025(), "250003"), apperr.ErrValidation)
		assert.NoError(t, f.service.ValidateManualNumber(ctx, 1, issueDate2025(), "250008"))
	})

	t.Run("anything valid passes on an empty year", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoiceRepo.On("MaxNonSuffixedNumber", ctx, int64(1), 2025).Return("", nil)
		assert.NoError(t, f.service.ValidateManualNumber(ctx, 1, issueDate2025(), "250001"))
	})
}

func TestInvoiceService_NextRevisionSuffix(t *testing.T) {
	ctx := context.Background()

	t.Run("first free letter", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoiceRepo.On("NumbersWithPrefix", ctx, int64(1), "250007").
			Return([]string{"250007", "250007a", "250007b"}, nil)

		s, err := f.service.NextRevisionSuffix(ctx, 1, "250007")
		require.NoError(t, err)
		assert.Equal(t, "c", s)
	})

	t.Run("fills gaps", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoiceRepo.On("NumbersWithPrefix", ctx, int64(1), "250007").
			Return([]string{"250007", "250007b"}, nil)

		s, err := f.service.NextRevisionSuffix(ctx, 1, "250007")
		require.NoError(t, err)
		assert.Equal(t, "a", s)
	})

	t.Run("exhausted after z", func(t *testing.T) {
		f := newInvoiceFixture()
		all := []string{"250007"}
		for c := byte('a'); c <= 'z'; c++ {
			all = append(all, "250007"+string(c))
		}
		f.invoiceRepo.On("NumbersWithPrefix", ctx, int64(1), "250007").Return(all, nil)

		_, err := f.service.NextRevisionSuffix(ctx, 1, "250007")
		assert.ErrorIs(t, err, apperr.ErrExhausted)
	})
}

func TestInvoiceService_CreateDraft(t *testing.T) {
	ctx := context.Background()
	contact := &model.Contact{ID: 5, BusinessID: 1, DisplayName: "Acme LLC", IsCustomer: true}

	req := model.InvoiceCreateRequest{
		ContactID: 5,
		IssueDate: issueDate2025(),
		Items: []model.InvoiceItemParams{
			{Description: "Consulting", Qty: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("150.00")},
		},
	}

	t.Run("auto-allocates and derives totals", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.contactRepo.On("Get", ctx, int64(1), int64(5)).Return(contact, nil)
		f.counterRepo.On("AllocateNext", mock.Anything, int64(1), 2025).Return(1, nil)
		f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.Anything).
			Run(func(args mock.Arguments) {
				inv := args.Get(1).(*model.Invoice)
				items := args.Get(2).([]model.InvoiceItem)
				assert.Equal(t, "250001", inv.InvoiceNumber)
				assert.Equal(t, model.InvoiceStatusDraft, inv.Status)
				require.Len(t, items, 1)
				assert.True(t, items[0].LineTotal.Equal(decimal.RequireFromString("450.00")))
				assert.True(t, inv.Total.Equal(decimal.RequireFromString("450.00")))
			}).
			Return(&model.Invoice{ID: 10, BusinessID: 1, InvoiceNumber: "250001", Status: model.InvoiceStatusDraft}, nil)

		created, err := f.service.CreateDraft(ctx, 1, req)
		require.NoError(t, err)
		assert.Equal(t, int64(10), created.ID)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("manual number bumps the counter", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.contactRepo.On("Get", ctx, int64(1), int64(5)).Return(contact, nil)
		f.invoiceRepo.On("MaxNonSuffixedNumber", mock.Anything, int64(1), 2025).Return("250007", nil)
		f.counterRepo.On("BumpTo", mock.Anything, int64(1), 2025, 40).Return(nil)
		f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.Anything).
			Return(&model.Invoice{ID: 11, BusinessID: 1, InvoiceNumber: "250040"}, nil)

		manual := req
		manual.InvoiceNumber = "250040"
		_, err := f.service.CreateDraft(ctx, 1, manual)
		require.NoError(t, err)
		f.counterRepo.AssertExpectations(t)
	})

	t.Run("manual number below maximum fails without insert", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.contactRepo.On("Get", ctx, int64(1), int64(5)).Return(contact, nil)
		f.invoiceRepo.On("MaxNonSuffixedNumber", mock.Anything, int64(1), 2025).Return("250040", nil)

		manual := req
		manual.InvoiceNumber = "250039"
		_, err := f.service.CreateDraft(ctx, 1, manual)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown contact rejected", func(t *testing.T) {
		f := newInvoiceFixture()
		f.contactRepo.On("Get", ctx, int64(1), int64(5)).Return(nil, errContactMissing())

		_, err := f.service.CreateDraft(ctx, 1, req)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestInvoiceService_Send(t *testing.T) {
	ctx := context.Background()

	draft := func() *model.Invoice {
		return &model.Invoice{
			ID: 10, BusinessID: 1, Status: model.InvoiceStatusDraft,
			ContactID: 5, InvoiceNumber: "250001",
		}
	}
	items := []model.InvoiceItem{
		{Description: "Consulting", Qty: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.00"), LineTotal: decimal.RequireFromString("200.00")},
	}
	contact := &model.Contact{ID: 5, BusinessID: 1, DisplayName: "Acme LLC", Email: "billing@acme.test", City: "Portland"}

	t.Run("happy path snapshots, renders and flips status", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(draft(), nil)
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(items, nil)
		f.contactRepo.On("Get", mock.Anything, int64(1), int64(5)).Return(contact, nil)
		f.renderer.On("Render", mock.Anything, mock.AnythingOfType("model.Invoice"), items).Return([]byte("%PDF"), nil)
		f.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Invoice")).
			Run(func(args mock.Arguments) {
				inv := args.Get(1).(*model.Invoice)
				assert.Equal(t, model.InvoiceStatusSent, inv.Status)
				assert.Equal(t, "Acme LLC", inv.BillTo.Name)
				assert.Equal(t, "US", inv.BillTo.Country)
				require.NotNil(t, inv.SentDate)
				assert.True(t, inv.Total.Equal(decimal.RequireFromString("200.00")))
			}).
			Return(echoUpdate, nil)
		f.invoiceRepo.On("SavePDF", mock.Anything, int64(1), int64(10), []byte("%PDF")).Return(nil)

		sent, err := f.service.Send(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceStatusSent, sent.Status)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("only drafts can be sent", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		paid := draft()
		paid.Status = model.InvoiceStatusPaid
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(paid, nil)

		_, err := f.service.Send(ctx, 1, 10)
		assert.ErrorIs(t, err, apperr.ErrState)
	})

	t.Run("render failure keeps the draft", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(draft(), nil)
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(items, nil)
		f.contactRepo.On("Get", mock.Anything, int64(1), int64(5)).Return(contact, nil)
		f.renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil, assertErr)

		_, err := f.service.Send(ctx, 1, 10)
		require.Error(t, err)
		f.invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.invoiceRepo.AssertNotCalled(t, "SavePDF", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	subID := int64(100)

	sent := func() *model.Invoice {
		return &model.Invoice{
			ID: 10, BusinessID: 1, Status: model.InvoiceStatusSent,
			ContactID: 5, InvoiceNumber: "250001",
			Total: decimal.RequireFromString("200.00"),
		}
	}
	items := []model.InvoiceItem{
		{Description: "Consulting", Qty: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.00"), LineTotal: decimal.RequireFromString("200.00"), SubCategoryID: &subID},
	}

	t.Run("posts exactly one income transaction and links it", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(sent(), nil)
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(items, nil)
		f.chartRepo.On("GetSubCategory", mock.Anything, int64(1), subID).
			Return(&model.SubCategory{ID: subID, BusinessID: 1, CategoryID: 10, Name: "Consulting"}, nil)
		f.chartRepo.On("GetCategory", mock.Anything, int64(1), int64(10)).
			Return(&model.Category{ID: 10, BusinessID: 1, Name: "Sales", Type: model.CategoryTypeIncome}, nil)
		f.ledgerRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).
			Run(func(args mock.Arguments) {
				txn := args.Get(1).(*model.Transaction)
				assert.True(t, txn.Amount.Equal(decimal.RequireFromString("200.00")))
				assert.Equal(t, model.CategoryTypeIncome, txn.Type)
				assert.Equal(t, "250001", txn.InvoiceNumber)
				require.NotNil(t, txn.ContactID)
				assert.Equal(t, int64(5), *txn.ContactID)
			}).
			Return(&model.Transaction{ID: 77, BusinessID: 1}, nil)
		f.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Invoice")).
			Run(func(args mock.Arguments) {
				inv := args.Get(1).(*model.Invoice)
				assert.Equal(t, model.InvoiceStatusPaid, inv.Status)
				require.NotNil(t, inv.IncomeTransactionID)
				assert.Equal(t, int64(77), *inv.IncomeTransactionID)
				require.NotNil(t, inv.PaidDate)
			}).
			Return(echoUpdate, nil)

		txn, err := f.service.MarkPaid(ctx, 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(77), txn.ID)
		f.ledgerRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("second call fails cleanly", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		already := sent()
		linked := int64(77)
		already.IncomeTransactionID = &linked
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(already, nil)

		_, err := f.service.MarkPaid(ctx, 1, 10, nil)
		assert.ErrorIs(t, err, apperr.ErrState)
		f.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("drafts cannot be marked paid", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		d := sent()
		d.Status = model.InvoiceStatusDraft
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(d, nil)

		_, err := f.service.MarkPaid(ctx, 1, 10, nil)
		assert.ErrorIs(t, err, apperr.ErrState)
	})

	t.Run("requires an item with a subcategory", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(sent(), nil)
		bare := []model.InvoiceItem{{Description: "Misc", Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(5)}}
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(bare, nil)

		_, err := f.service.MarkPaid(ctx, 1, 10, nil)
		assert.ErrorIs(t, err, apperr.ErrState)
		f.ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_Void(t *testing.T) {
	ctx := context.Background()

	mk := func(status model.InvoiceStatus) *model.Invoice {
		return &model.Invoice{ID: 10, BusinessID: 1, Status: status, InvoiceNumber: "250001"}
	}

	t.Run("draft and sent can be voided", func(t *testing.T) {
		for _, status := range []model.InvoiceStatus{model.InvoiceStatusDraft, model.InvoiceStatusSent} {
			f := newInvoiceFixture()
			f.expectTx(ctx)
			f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(mk(status), nil)
			f.invoiceRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Invoice")).
				Return(echoUpdate, nil)

			voided, err := f.service.Void(ctx, 1, 10)
			require.NoError(t, err, "from %s", status)
			assert.Equal(t, model.InvoiceStatusVoid, voided.Status)
		}
	})

	t.Run("paid cannot be voided", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(mk(model.InvoiceStatusPaid), nil)

		_, err := f.service.Void(ctx, 1, 10)
		assert.ErrorIs(t, err, apperr.ErrState)
	})
}

func TestInvoiceService_CreateRevision(t *testing.T) {
	ctx := context.Background()
	subID := int64(100)

	sent := &model.Invoice{
		ID: 10, BusinessID: 1, Status: model.InvoiceStatusSent,
		ContactID: 5, InvoiceNumber: "250007", Memo: "original",
		IssueDate: issueDate2025(),
	}
	items := []model.InvoiceItem{
		{ID: 1, InvoiceID: 10, Description: "Consulting", Qty: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("100.00"), LineTotal: decimal.RequireFromString("200.00"), SubCategoryID: &subID},
	}

	t.Run("copies header and items under the next suffix", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(sent, nil)
		f.invoiceRepo.On("NumbersWithPrefix", mock.Anything, int64(1), "250007").Return([]string{"250007"}, nil)
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(items, nil)
		f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.Anything).
			Run(func(args mock.Arguments) {
				inv := args.Get(1).(*model.Invoice)
				copies := args.Get(2).([]model.InvoiceItem)
				assert.Equal(t, "250007a", inv.InvoiceNumber)
				assert.Equal(t, model.InvoiceStatusDraft, inv.Status)
				require.NotNil(t, inv.RevisesID)
				assert.Equal(t, int64(10), *inv.RevisesID)
				assert.Equal(t, "original", inv.Memo)
				require.Len(t, copies, 1)
				assert.Zero(t, copies[0].ID)
				assert.True(t, copies[0].LineTotal.Equal(decimal.RequireFromString("200.00")))
			}).
			Return(&model.Invoice{ID: 20, BusinessID: 1, InvoiceNumber: "250007a", Status: model.InvoiceStatusDraft}, nil)

		rev, err := f.service.CreateRevision(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, "250007a", rev.InvoiceNumber)
	})

	t.Run("revising a revision keeps the base number", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		revised := *sent
		revised.InvoiceNumber = "250007a"
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(&revised, nil)
		f.invoiceRepo.On("NumbersWithPrefix", mock.Anything, int64(1), "250007").Return([]string{"250007", "250007a"}, nil)
		f.invoiceRepo.On("ListItems", mock.Anything, int64(1), int64(10)).Return(items, nil)
		f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice"), mock.Anything).
			Return(&model.Invoice{ID: 21, BusinessID: 1, InvoiceNumber: "250007b"}, nil)

		rev, err := f.service.CreateRevision(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, "250007b", rev.InvoiceNumber)
	})

	t.Run("only sent invoices can be revised", func(t *testing.T) {
		f := newInvoiceFixture()
		f.expectTx(ctx)
		d := *sent
		d.Status = model.InvoiceStatusDraft
		f.invoiceRepo.On("GetForUpdate", mock.Anything, int64(1), int64(10)).Return(&d, nil)

		_, err := f.service.CreateRevision(ctx, 1, 10)
		assert.ErrorIs(t, err, apperr.ErrState)
	})
}
