package compensation

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 20

func (s *CompensationServiceImpl) summarize(st compensation.Structure) (compensation.StructureSummary, error) {
	resolved, result, err := s.evaluate(st.Configuration)
	if err != nil {
		return compensation.StructureSummary{}, fmt.Errorf("structure of employee %s: %w", st.EmployeeID, err)
	}

	return compensation.StructureSummary{
		EmployeeID:      st.EmployeeID,
		EmployeeName:    st.EmployeeName,
		EmployeeCode:    st.EmployeeCode,
		MonthlyWage:     resolved.MonthlyWage,
		Basic:           resolved.Basic,
		TotalAllowances: resolved.TotalAllowances,
		TotalDeductions: resolved.EmployeeDeductions,
		GrossEarnings:   resolved.GrossEarnings,
		NetPay:          resolved.NetPay,
		EmployerCost:    resolved.EmployerCost,
		Status:          result.Status,
		Version:         st.Version,
	}, nil
}

func totalsOf(summaries []compensation.StructureSummary) compensation.StructureTotals {
	totals := compensation.StructureTotals{
		TotalEmployees:    len(summaries),
		TotalMonthlyWage:  decimal.Zero,
		TotalAllowances:   decimal.Zero,
		TotalDeductions:   decimal.Zero,
		TotalNetPay:       decimal.Zero,
		TotalEmployerCost: decimal.Zero,
	}
	for _, sm := range summaries {
		totals.TotalMonthlyWage = totals.TotalMonthlyWage.Add(sm.MonthlyWage)
		totals.TotalAllowances = totals.TotalAllowances.Add(sm.TotalAllowances)
		totals.TotalDeductions = totals.TotalDeductions.Add(sm.TotalDeductions)
		totals.TotalNetPay = totals.TotalNetPay.Add(sm.NetPay)
		totals.TotalEmployerCost = totals.TotalEmployerCost.Add(sm.EmployerCost)
		if sm.Status == compensation.StatusOverAllocated {
			totals.OverAllocatedCount++
		}
	}
	return totals
}

// ListStructures returns the payroll overview. Feasibility is derived, so a
// status filter is applied after resolving every structure of the company.
func (s *CompensationServiceImpl) ListStructures(ctx context.Context, filter compensation.StructureFilter) (compensation.ListStructureResponse, error) {
	if err := filter.Validate(); err != nil {
		return compensation.ListStructureResponse{}, err
	}

	actor, err := actorFromContext(ctx)
	if err != nil {
		return compensation.ListStructureResponse{}, err
	}
	if !compensation.CanPreview(actor) {
		return compensation.ListStructureResponse{}, compensation.ErrPermissionDenied
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	zlog := s.zlog.With(
		zap.String("method", "ListStructures"),
		zap.String("company_id", actor.CompanyID),
	)

	var (
		page  []compensation.Structure
		all   []compensation.Structure
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.structureRepo.ListAll(gctx, actor.CompanyID)
		return err
	})
	if filter.Status == nil {
		g.Go(func() error {
			var err error
			page, err = s.structureRepo.List(gctx, actor.CompanyID, filter)
			return err
		})
		g.Go(func() error {
			var err error
			total, err = s.structureRepo.Count(gctx, actor.CompanyID, filter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		zlog.Error("failed to list salary structures", zap.Error(err))
		return compensation.ListStructureResponse{}, err
	}

	summaries := make([]compensation.StructureSummary, 0, len(all))
	byEmployee := make(map[string]compensation.StructureSummary, len(all))
	for _, st := range all {
		sm, err := s.summarize(st)
		if err != nil {
			zlog.Error("failed to resolve stored structure", zap.Error(err))
			return compensation.ListStructureResponse{}, err
		}
		summaries = append(summaries, sm)
		byEmployee[st.EmployeeID] = sm
	}

	resp := compensation.ListStructureResponse{
		Totals: totalsOf(summaries),
		Page:   filter.Page,
		Limit:  filter.Limit,
	}

	if filter.Status == nil {
		resp.Data = make([]compensation.StructureSummary, 0, len(page))
		for _, st := range page {
			sm, ok := byEmployee[st.EmployeeID]
			if !ok {
				// written after ListAll ran
				if sm, err = s.summarize(st); err != nil {
					return compensation.ListStructureResponse{}, err
				}
			}
			resp.Data = append(resp.Data, sm)
		}
		resp.TotalCount = total
		return resp, nil
	}

	matched := make([]compensation.StructureSummary, 0)
	for i, sm := range summaries {
		if string(sm.Status) == *filter.Status && matchesSearch(all[i], filter.Search) {
			matched = append(matched, sm)
		}
	}
	resp.TotalCount = int64(len(matched))
	resp.Data = paginate(matched, filter.Page, filter.Limit)
	return resp, nil
}
