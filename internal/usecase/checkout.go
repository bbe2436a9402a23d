package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/gopherpos/internal/domain/errors"
	"github.com/polkiloo/gopherpos/internal/domain/model"
	"github.com/polkiloo/gopherpos/internal/domain/repository"
)

// DefaultMaxAttempts bounds how many order numbers one checkout may try.
const DefaultMaxAttempts = 3

// Checkout outcomes reported to the CheckoutRecorder.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeTotalMismatch     = "total_mismatch"
	OutcomeLockTimeout       = "lock_timeout"
	OutcomeExhausted         = "exhausted"
	OutcomeError             = "error"
)

var gramsPerKg = decimal.NewFromInt(1000)

// OrderNumberGenerator hands out candidate order numbers.
type OrderNumberGenerator interface {
	Generate() string
}

// CheckoutRecorder receives checkout outcomes for monitoring.
type CheckoutRecorder interface {
	ObserveCheckout(outcome string, attempts int)
	ObserveCollision()
}

type nopRecorder struct{}

func (nopRecorder) ObserveCheckout(string, int) {}
func (nopRecorder) ObserveCollision()           {}

// CheckoutOptions tunes checkout behaviour.
type CheckoutOptions struct {
	MaxAttempts    int
	PointsEnabled  bool
	PriceTolerance decimal.Decimal
}

// CheckoutUseCase turns a cart into a committed order, stock deductions and
// usage logs in one transaction.
type CheckoutUseCase struct {
	tx       repository.Transactor
	numbers  OrderNumberGenerator
	points   PointsAccruer
	recorder CheckoutRecorder
	opts     CheckoutOptions
	logger   *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase. points and recorder may be nil.
func NewCheckoutUseCase(tx repository.Transactor, numbers OrderNumberGenerator, points PointsAccruer, recorder CheckoutRecorder, opts CheckoutOptions, logger *slog.Logger) *CheckoutUseCase {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CheckoutUseCase{
		tx:       tx,
		numbers:  numbers,
		points:   points,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
	}
}

// Checkout validates the cart and runs up to MaxAttempts transactional
// attempts. Only an order number collision starts a new attempt.
func (u *CheckoutUseCase) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	if err := ValidateCheckout(req); err != nil {
		u.recorder.ObserveCheckout(OutcomeInvalid, 0)
		return nil, err
	}

	for attempt := 1; attempt <= u.opts.MaxAttempts; attempt++ {
		u.trace(ctx, attempt, "", model.StateStart)
		number := u.numbers.Generate()
		u.trace(ctx, attempt, number, model.StateIdentifierAssigned)

		order, warnings, err := u.attempt(ctx, attempt, number, req)
		if err == nil {
			u.trace(ctx, attempt, number, model.StateCommitted)
			u.recorder.ObserveCheckout(OutcomeSuccess, attempt)
			u.logger.InfoContext(ctx, "checkout committed",
				slog.String("order", order.Number),
				slog.Int("attempt", attempt),
				slog.String("total", order.Total.StringFixed(2)),
			)
			return &model.CheckoutResult{Order: order, Attempts: attempt, Warnings: warnings}, nil
		}

		if errors.Is(err, domainErrors.ErrOrderNumberTaken) {
			u.recorder.ObserveCollision()
			u.trace(ctx, attempt, number, model.StateRetry)
			u.logger.WarnContext(ctx, "order number collision",
				slog.String("order", number),
				slog.Int("attempt", attempt),
			)
			continue
		}

		u.trace(ctx, attempt, number, model.StateFailed)
		outcome := outcomeOf(err)
		u.recorder.ObserveCheckout(outcome, attempt)
		if outcome == OutcomeError {
			u.logger.ErrorContext(ctx, "checkout failed", slog.String("order", number), slog.String("error", err.Error()))
		} else {
			u.logger.InfoContext(ctx, "checkout rejected", slog.String("order", number), slog.String("reason", err.Error()))
		}
		return nil, err
	}

	u.trace(ctx, u.opts.MaxAttempts, "", model.StateFailed)
	u.recorder.ObserveCheckout(OutcomeExhausted, u.opts.MaxAttempts)
	u.logger.ErrorContext(ctx, "order number allocation exhausted", slog.Int("attempts", u.opts.MaxAttempts))
	return nil, fmt.Errorf("%w (after %d attempts)", domainErrors.ErrOrderNumberExhausted, u.opts.MaxAttempts)
}

func (u *CheckoutUseCase) attempt(ctx context.Context, attempt int, number string, req model.CheckoutRequest) (*model.Order, []string, error) {
	var (
		order    *model.Order
		warnings []string
	)

	err := u.tx.WithinTx(ctx, func(tx repository.Tx) error {
		plan, err := u.prepare(ctx, tx, req)
		if err != nil {
			return err
		}
		u.trace(ctx, attempt, number, model.StateStockValidated)

		for _, d := range plan.deductions {
			if err := tx.Inventory().ApplyDeduction(ctx, d.ref, d.amount, number); err != nil {
				return err
			}
		}
		u.trace(ctx, attempt, number, model.StateStockApplied)

		o := plan.order(number, req)
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		u.trace(ctx, attempt, number, model.StateOrderPersisted)

		for _, line := range o.Lines {
			if line.Kind != model.LineRecipe {
				continue
			}
			usage := &model.RecipeUsage{
				OrderID:     o.ID,
				RecipeID:    line.RecipeID,
				WeightGrams: line.WeightGrams,
				Details:     line.Consumption,
			}
			if err := tx.Usage().Log(ctx, usage); err != nil {
				return err
			}
		}
		u.trace(ctx, attempt, number, model.StateUsageLogged)

		if o.PointsStatus == model.PointsPending {
			if warning := u.accrue(ctx, tx, o); warning != "" {
				warnings = append(warnings, warning)
			}
		}
		u.trace(ctx, attempt, number, model.StatePointsAccrued)

		order = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, warnings, nil
}

// accrue credits points inside a savepoint. A failure leaves the order PENDING
// for the reconciler and comes back as a warning.
func (u *CheckoutUseCase) accrue(ctx context.Context, tx repository.Tx, order *model.Order) string {
	var earned decimal.Decimal
	err := tx.Savepoint(ctx, func(sp repository.Tx) error {
		var err error
		earned, err = u.points.Accrue(ctx, sp, *order.MemberID, order.Total, order.Number)
		if err != nil {
			return err
		}
		return sp.Orders().MarkPoints(ctx, order.ID, model.PointsCredited, earned)
	})
	if err != nil {
		u.logger.WarnContext(ctx, "points accrual deferred",
			slog.String("order", order.Number),
			slog.Int64("member", *order.MemberID),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("points for order %s will be credited later", order.Number)
	}
	order.PointsStatus = model.PointsCredited
	order.PointsEarned = earned
	return ""
}

type deduction struct {
	ref    model.StockRef
	amount decimal.Decimal
}

type checkoutPlan struct {
	lines      []model.OrderLine
	deductions []deduction
	member     *model.Member
	subtotal   decimal.Decimal
	discount   decimal.Decimal
	total      decimal.Decimal
	points     bool
}

func (p *checkoutPlan) order(number string, req model.CheckoutRequest) *model.Order {
	status := model.PointsNone
	if p.points {
		status = model.PointsPending
	}
	return &model.Order{
		Number:        number,
		MemberID:      req.MemberID,
		OperatorID:    req.OperatorID,
		Lines:         p.lines,
		Subtotal:      p.subtotal,
		Discount:      p.discount,
		Total:         p.total,
		PaymentMethod: req.PaymentMethod,
		PointsStatus:  status,
		PointsEarned:  decimal.Zero,
	}
}

// prepare reads and locks everything the cart touches, prices it and checks
// stock. Nothing is written yet.
func (u *CheckoutUseCase) prepare(ctx context.Context, tx repository.Tx, req model.CheckoutRequest) (*checkoutPlan, error) {
	catalog := tx.Catalog()

	recipes, err := catalog.Recipes(ctx, recipeIDs(req.Lines))
	if err != nil {
		return nil, err
	}
	var materialIDs []int64
	for _, line := range req.Lines {
		if !line.IsRecipe() {
			continue
		}
		recipe, ok := recipes[line.RecipeID]
		if !ok {
			return nil, &domainErrors.NotFoundError{Kind: "recipe", ID: line.RecipeID}
		}
		for _, ing := range recipe.Ingredients {
			materialIDs = append(materialIDs, ing.MaterialID)
		}
	}

	// materials before products, each ascending, so concurrent checkouts
	// acquire row locks in the same order
	materials, err := catalog.LockMaterials(ctx, uniqueSorted(materialIDs))
	if err != nil {
		return nil, err
	}
	products, err := catalog.LockProducts(ctx, productIDs(req.Lines))
	if err != nil {
		return nil, err
	}

	plan := &checkoutPlan{subtotal: decimal.Zero, discount: decimal.Zero}
	need := make(map[model.StockRef]decimal.Decimal)

	for _, line := range req.Lines {
		if line.IsProduct() {
			product, ok := products[line.ProductID]
			if !ok {
				return nil, &domainErrors.NotFoundError{Kind: "product", ID: line.ProductID}
			}
			amount := product.Price.Mul(line.Quantity).Round(2)
			plan.lines = append(plan.lines, model.OrderLine{
				Kind:      model.LineProduct,
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Amount:    amount,
			})
			plan.subtotal = plan.subtotal.Add(amount)
			ref := model.StockRef{Kind: model.StockProduct, ID: product.ID}
			need[ref] = need[ref].Add(line.Quantity)
			continue
		}

		recipe, err := withLockedMaterials(recipes[line.RecipeID], materials)
		if err != nil {
			return nil, err
		}
		consumption, err := ResolveConsumption(recipe, line.WeightGrams)
		if err != nil {
			return nil, err
		}
		amount := recipe.PricePerKg.Mul(decimal.NewFromFloat(line.WeightGrams)).Div(gramsPerKg).Round(2)
		plan.lines = append(plan.lines, model.OrderLine{
			Kind:        model.LineRecipe,
			RecipeID:    recipe.ID,
			Name:        recipe.Name,
			WeightGrams: line.WeightGrams,
			UnitPrice:   recipe.PricePerKg,
			Amount:      amount,
			Consumption: consumption,
		})
		plan.subtotal = plan.subtotal.Add(amount)
		for _, c := range consumption {
			ref := model.StockRef{Kind: model.StockMaterial, ID: c.MaterialID}
			need[ref] = need[ref].Add(c.Amount)
		}
	}

	if err := plan.checkStock(need, materials, products); err != nil {
		return nil, err
	}

	if req.MemberID != nil {
		member, err := catalog.Member(ctx, *req.MemberID)
		if err != nil {
			return nil, err
		}
		plan.member = member
		plan.discount = plan.subtotal.Mul(member.DiscountRate).Round(2)
		if plan.discount.IsNegative() {
			plan.discount = decimal.Zero
		}
		if plan.discount.GreaterThan(plan.subtotal) {
			plan.discount = plan.subtotal
		}
		plan.points = u.opts.PointsEnabled && u.points != nil
	}
	plan.total = plan.subtotal.Sub(plan.discount)

	if req.QuotedTotal != nil && req.QuotedTotal.Sub(plan.total).Abs().GreaterThan(u.opts.PriceTolerance) {
		return nil, fmt.Errorf("%w: quoted %s, computed %s",
			domainErrors.ErrTotalMismatch, req.QuotedTotal.StringFixed(2), plan.total.StringFixed(2))
	}

	return plan, nil
}

// checkStock compares aggregated needs against locked stock and records the
// deductions in lock order.
func (p *checkoutPlan) checkStock(need map[model.StockRef]decimal.Decimal, materials map[int64]model.Material, products map[int64]model.Product) error {
	refs := make([]model.StockRef, 0, len(need))
	for ref := range need {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind == model.StockMaterial
		}
		return refs[i].ID < refs[j].ID
	})

	for _, ref := range refs {
		required := need[ref]
		if !required.IsPositive() {
			continue
		}

		var name, stockUnit string
		var available decimal.Decimal
		if ref.Kind == model.StockMaterial {
			m := materials[ref.ID]
			name, stockUnit, available = m.Name, m.Unit, m.Stock
		} else {
			pr := products[ref.ID]
			name, stockUnit, available = pr.Name, pr.Unit, pr.Stock
		}

		if available.LessThan(required) {
			return &domainErrors.InsufficientStockError{
				Kind:      string(ref.Kind),
				ID:        ref.ID,
				Name:      name,
				Required:  required,
				Available: available,
				Unit:      stockUnit,
			}
		}
		p.deductions = append(p.deductions, deduction{ref: ref, amount: required})
	}
	return nil
}

// withLockedMaterials refreshes ingredient units from the rows read under lock.
func withLockedMaterials(recipe model.Recipe, materials map[int64]model.Material) (model.Recipe, error) {
	ingredients := make([]model.Ingredient, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		m, ok := materials[ing.MaterialID]
		if !ok {
			return recipe, &domainErrors.NotFoundError{Kind: "material", ID: ing.MaterialID}
		}
		ing.MaterialName = m.Name
		ing.StockUnit = m.Unit
		ing.CustomRate = m.CustomRate
		ingredients[i] = ing
	}
	recipe.Ingredients = ingredients
	return recipe, nil
}

func (u *CheckoutUseCase) trace(ctx context.Context, attempt int, number string, state model.CheckoutState) {
	u.logger.DebugContext(ctx, "checkout state",
		slog.Int("attempt", attempt),
		slog.String("order", number),
		slog.String("state", string(state)),
	)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidCart), errors.Is(err, domainErrors.ErrUnknownUnit):
		return OutcomeInvalid
	case errors.Is(err, domainErrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domainErrors.ErrTotalMismatch):
		return OutcomeTotalMismatch
	case errors.Is(err, domainErrors.ErrLockTimeout):
		return OutcomeLockTimeout
	default:
		return OutcomeError
	}
}

func recipeIDs(lines []model.CartLine) []int64 {
	var ids []int64
	for _, line := range lines {
		if line.IsRecipe() {
			ids = append(ids, line.RecipeID)
		}
	}
	return uniqueSorted(ids)
}

func productIDs(lines []model.CartLine) []int64 {
	var ids []int64
	for _, line := range lines {
		if line.IsProduct() {
			ids = append(ids, line.ProductID)
		}
	}
	return uniqueSorted(ids)
}

func uniqueSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, id := range sorted[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
