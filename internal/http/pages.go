package http

import (
	"html/template"
	"strconv"

	"budgetboard/internal/controller"
	"budgetboard/internal/core"
	"budgetboard/internal/view"
)

var templateFuncs = template.FuncMap{
	// width renders a progress percentage for an inline style.
	"width": func(p float64) string {
		return strconv.FormatFloat(p, 'f', 1, 64) + "%"
	},
}

type themeView struct {
	Dark  bool
	Icon  string
	Label string
}

type formView struct {
	Categories []core.CategoryInfo
	Values     controller.FormInput
	Errors     controller.FormErrors
	Notice     controller.Notice
	NoticeMs   int64
}

type budgetView struct {
	Value    string
	Notice   controller.Notice
	NoticeMs int64
}

type pageData struct {
	Theme     themeView
	Form      formView
	Budget    budgetView
	Status    controller.Notice
	Dashboard view.Dashboard
	NoticeMs  int64
}

func (s *Server) themeView() themeView {
	t := s.app.Theme
	return themeView{Dark: t.Dark(), Icon: t.Icon(), Label: t.Label()}
}

func (s *Server) formView(values controller.FormInput, errs controller.FormErrors) formView {
	return formView{
		Categories: core.Categories(),
		Values:     values,
		Errors:     errs,
		Notice:     s.app.Form.Banner().Current(),
		NoticeMs:   s.noticeMs(),
	}
}

func (s *Server) budgetView() budgetView {
	return budgetView{
		Value:    s.app.Budget.Current(),
		Notice:   s.app.Budget.Banner().Current(),
		NoticeMs: s.noticeMs(),
	}
}

func (s *Server) pageData() pageData {
	return pageData{
		Theme:     s.themeView(),
		Form:      s.formView(s.app.Form.Blank(), controller.FormErrors{}),
		Budget:    s.budgetView(),
		Status:    s.app.Status.Current(),
		Dashboard: s.app.Dashboard(),
		NoticeMs:  s.noticeMs(),
	}
}
