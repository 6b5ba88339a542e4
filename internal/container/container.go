package container

import (
	app "ppe-inspector/internal/application"
	"ppe-inspector/internal/domain/entity"
	"ppe-inspector/internal/domain/port"
)

type Container struct {
	UserService       *app.UserService
	InspectionService *app.InspectionService
}

// New собирает сервисы приложения из портов. describer может быть nil.
func New(
	userRepo port.UserRepository,
	detector port.ObjectDetector,
	annotator port.Annotator,
	describer port.ComplianceDescriber,
	cm entity.ComplianceMap,
	opts app.InspectionOptions,
) *Container {
	userService := app.NewUserService(userRepo)
	inspectionService := app.NewInspectionService(detector, annotator, describer, app.NewAggregator(cm), opts)

	return &Container{
		UserService:       userService,
		InspectionService: inspectionService,
	}
}
