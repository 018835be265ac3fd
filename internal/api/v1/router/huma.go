package router

import (
	"net/http"
	"os"

	"coursegpt/internal/api/v1/handler"
	"coursegpt/internal/config"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SetupHumaAPI creates a Huma API instance. authMiddleware may be nil, in which case every
// route is public.
func SetupHumaAPI(
	cfg *config.Config,
	authMiddleware func(http.Handler) http.Handler,
	logger zerolog.Logger,
) (*chi.Mux, huma.API) {
	// Create Chi router for Huma adapter
	chiRouter := chi.NewRouter()

	if authMiddleware != nil {
		chiRouter.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Skip auth for OpenAPI docs endpoints
				if r.URL.Path == "/openapi.json" || r.URL.Path == "/openapi.yaml" || r.URL.Path == "/docs" || r.URL.Path == "/schemas" {
					next.ServeHTTP(w, r)
					return
				}
				authMiddleware(next).ServeHTTP(w, r)
			})
		})
	}

	// Get version from environment or default to development
	version := os.Getenv("GIT_COMMIT_SHA")
	if version == "" {
		version = "development"
	}

	// Configure Huma with OpenAPI 3.1
	humaConfig := huma.DefaultConfig("CourseGPT API v1", version)
	humaConfig.Info.Description = "Course authoring API with model-generated courses, modules and lessons"
	humaConfig.Servers = []*huma.Server{{URL: cfg.APIBaseURL}}

	api := humachi.New(chiRouter, humaConfig)

	logger.Info().Str("version", version).Bool("auth", authMiddleware != nil).Msg("Huma API initialized for /v1")

	return chiRouter, api
}

// RegisterRoutes registers all Huma operations
func RegisterRoutes(
	api huma.API,
	courseHandler *handler.CourseHandler,
	generationHandler *handler.GenerationHandler,
	logger zerolog.Logger,
) {
	logger.Info().Msg("Registering routes")

	// ========== COURSE OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID:   "createCourse",
		Method:        http.MethodPost,
		Path:          "/courses",
		Summary:       "Create a course",
		Description:   "Validates a course with optional modules and lessons and stores it as a draft. Module and lesson ids are assigned where missing.",
		Tags:          []string{"courses"},
		DefaultStatus: http.StatusCreated,
	}, courseHandler.CreateCourse)

	huma.Register(api, huma.Operation{
		OperationID: "listCourses",
		Method:      http.MethodGet,
		Path:        "/courses",
		Summary:     "List courses",
		Description: "Lists every course in creation order",
		Tags:        []string{"courses"},
	}, courseHandler.ListCourses)

	huma.Register(api, huma.Operation{
		OperationID: "getCourse",
		Method:      http.MethodGet,
		Path:        "/courses/{courseId}",
		Summary:     "Get a course",
		Description: "Retrieves a course with its modules and lessons",
		Tags:        []string{"courses"},
	}, courseHandler.GetCourse)

	huma.Register(api, huma.Operation{
		OperationID: "togglePublish",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/toggle-publish",
		Summary:     "Toggle publish status",
		Description: "Flips the course between Draft and Published",
		Tags:        []string{"courses"},
	}, courseHandler.TogglePublish)

	// ========== MODULE OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "addModule",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/modules",
		Summary:     "Add a module",
		Description: "Appends a module to the course under a new id",
		Tags:        []string{"modules"},
	}, courseHandler.AddModule)

	huma.Register(api, huma.Operation{
		OperationID: "updateModule",
		Method:      http.MethodPatch,
		Path:        "/courses/{courseId}/modules/{moduleId}",
		Summary:     "Update a module",
		Description: "Changes the module title or description. Lessons are managed through the lesson operations.",
		Tags:        []string{"modules"},
	}, courseHandler.UpdateModule)

	huma.Register(api, huma.Operation{
		OperationID: "deleteModule",
		Method:      http.MethodDelete,
		Path:        "/courses/{courseId}/modules/{moduleId}",
		Summary:     "Delete a module",
		Description: "Removes the module and its lessons",
		Tags:        []string{"modules"},
	}, courseHandler.DeleteModule)

	// ========== LESSON OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "addLesson",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/modules/{moduleId}/lessons",
		Summary:     "Add a lesson",
		Description: "Appends a lesson to the module under a new id",
		Tags:        []string{"lessons"},
	}, courseHandler.AddLesson)

	huma.Register(api, huma.Operation{
		OperationID: "updateLesson",
		Method:      http.MethodPatch,
		Path:        "/courses/{courseId}/modules/{moduleId}/lessons/{lessonId}",
		Summary:     "Update a lesson",
		Description: "Merges the supplied fields into the lesson. A supplied id is ignored.",
		Tags:        []string{"lessons"},
	}, courseHandler.UpdateLesson)

	huma.Register(api, huma.Operation{
		OperationID: "deleteLesson",
		Method:      http.MethodDelete,
		Path:        "/courses/{courseId}/modules/{moduleId}/lessons/{lessonId}",
		Summary:     "Delete a lesson",
		Tags:        []string{"lessons"},
	}, courseHandler.DeleteLesson)

	huma.Register(api, huma.Operation{
		OperationID: "regenerateLessonContent",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/modules/{moduleId}/lessons/{lessonId}/regenerate-content",
		Summary:     "Regenerate lesson content",
		Description: "Generates new content for the lesson title and stores it in the lesson",
		Tags:        []string{"lessons", "generation"},
	}, generationHandler.RegenerateLessonContent)

	// ========== GENERATION OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "generateCourse",
		Method:      http.MethodPost,
		Path:        "/generate/course",
		Summary:     "Generate a course",
		Description: "Generates a whole course from a topic and stores it. Responds 200 with the course when it could not be saved.",
		Tags:        []string{"generation"},
	}, generationHandler.GenerateCourse)

	huma.Register(api, huma.Operation{
		OperationID: "generateModule",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/generate-module",
		Summary:     "Generate a module",
		Description: "Generates a module for the course and appends it",
		Tags:        []string{"generation", "modules"},
	}, generationHandler.GenerateModule)

	huma.Register(api, huma.Operation{
		OperationID: "generateLesson",
		Method:      http.MethodPost,
		Path:        "/generate/lesson",
		Summary:     "Generate a lesson",
		Description: "Generates a lesson for review. The lesson is not added to any course.",
		Tags:        []string{"generation"},
	}, generationHandler.GenerateLesson)

	huma.Register(api, huma.Operation{
		OperationID: "generateContent",
		Method:      http.MethodPost,
		Path:        "/generate/content",
		Summary:     "Generate lesson content",
		Tags:        []string{"generation"},
	}, generationHandler.GenerateContent)

	huma.Register(api, huma.Operation{
		OperationID: "generateOutcomes",
		Method:      http.MethodPost,
		Path:        "/generate/outcomes",
		Summary:     "Generate learning outcomes",
		Tags:        []string{"generation"},
	}, generationHandler.GenerateOutcomes)

	logger.Info().Msg("Routes registered")
}
