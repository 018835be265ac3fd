package generation

import (
	"fmt"
	"strings"
)

const (
	courseInstruction = "You are an expert course creator. For the given title or topic, generate a comprehensive course outline including: " +
		"1) A compelling course title if not provided, 2) A detailed course description explaining what students will learn, " +
		"3) Appropriate category classification, 4) Suitable difficulty level, 5) Well-structured modules that follow a logical progression, " +
		"6) Diverse lesson types (lectures, quizzes, labs) within each module, 7) Clear learning outcomes for each lesson, and " +
		"8) Specific content suggestions for key lessons. Ensure the course is engaging, practical, and follows educational best practices.\n\n" +
		"Lesson.content holds the entire lesson, so include the full content in that field: a learner must be able to study the topic just by reading it."

	moduleInstruction = "You are an expert module creator. For the given topic, generate a comprehensive course module including:\n" +
		"1) A compelling module title if not provided\n" +
		"2) A detailed module description explaining what students will learn\n" +
		"3) Well-structured lessons that follow a logical progression\n" +
		"4) Diverse lesson types (lectures, quizzes, labs)\n" +
		"5) Clear learning outcomes for each lesson\n" +
		"6) Specific content for each lesson (include full educational content)\n\n" +
		"Ensure the module is engaging, practical, and follows educational best practices. Each lesson's content should be comprehensive " +
		"enough that a student could learn the material just by reading it."

	lessonInstruction = "You are an expert course creator specializing in educational content development. For the given lesson title, generate one lesson with:\n\n" +
		"1. A clear, descriptive title that accurately reflects the content\n" +
		"2. An appropriate lesson type (lecture, quiz, or lab) based on the content's purpose\n" +
		"3. Detailed, comprehensive content that thoroughly explains concepts, includes relevant examples, practical applications, " +
		"and addresses potential questions or misconceptions\n" +
		"4. Specific learning outcomes that are measurable, achievable, and aligned with the lesson content\n\n" +
		"For lectures: Include thorough explanations, examples, definitions, and contextual information.\n" +
		"For quizzes: Create meaningful assessment questions with explanations for correct answers.\n" +
		"For labs: Design practical, hands-on activities with clear step-by-step instructions."

	contentInstruction = "You are an expert course creator. For the given lesson title, generate a comprehensive content that thoroughly explains concepts, " +
		"includes relevant examples, practical applications, and addresses potential questions or misconceptions."

	outcomesInstruction = "You are an expert course creator. For the given lesson title, generate a comprehensive set of learning outcomes " +
		"that are measurable, achievable, and aligned with the lesson content."
)

func str(description string, nullable bool) *Schema {
	return &Schema{Type: TypeString, Description: description, Nullable: nullable}
}

func enum(description string, values ...string) *Schema {
	return &Schema{Type: TypeString, Format: "enum", Description: description, Enum: values}
}

func outcomesList(description string) *Schema {
	return &Schema{Type: TypeArray, Items: &Schema{Type: TypeString}, Nullable: true, Description: description}
}

func lessonSchema(contentDescription string) *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"title":            str("Title of the lesson", false),
			"type":             enum("Type of the lesson", "lecture", "quiz", "lab"),
			"content":          str(contentDescription, true),
			"learningOutcomes": outcomesList("Learning outcomes of the lesson"),
		},
		Required:         []string{"title", "type"},
		PropertyOrdering: []string{"title", "type", "content", "learningOutcomes"},
	}
}

func moduleSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"title":       str("Title of the module", false),
			"description": str("Description of the module", true),
			"lessons":     {Type: TypeArray, Items: lessonSchema("Comprehensive content of the lesson")},
		},
		Required:         []string{"title", "lessons"},
		PropertyOrdering: []string{"title", "description", "lessons"},
	}
}

func courseSchema() *Schema {
	module := moduleSchema()
	module.Required = []string{"title"}
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"title":           str("Title of the course", false),
			"description":     str("Description of the course", true),
			"category":        str("Category of the course", false),
			"difficultyLevel": enum("Difficulty level of the course", "Beginner", "Intermediate", "Advanced"),
			"thumbnail":       str("URL of the thumbnail", true),
			"status":          enum("Status of the course", "Draft", "Published"),
			"modules":         {Type: TypeArray, Items: module},
		},
		Required:         []string{"title", "category", "difficultyLevel"},
		PropertyOrdering: []string{"title", "description", "category", "difficultyLevel", "thumbnail", "status", "modules"},
	}
}

func newRequest(scope Scope, prompt, instruction string, schema *Schema) (Request, error) {
	if strings.TrimSpace(prompt) == "" {
		return Request{}, fmt.Errorf("%s request: %w", scope, ErrEmptyPrompt)
	}
	return Request{
		Scope:             scope,
		Prompt:            prompt,
		SystemInstruction: instruction,
		Schema:            schema,
	}, nil
}

// CourseRequest asks for a whole course tree about topic
func CourseRequest(topic string) (Request, error) {
	return newRequest(ScopeCourse, topic, courseInstruction, courseSchema())
}

// ModuleRequest asks for one module about topic. When courseTitle is set the prompt
// references the course so the module fits it.
func ModuleRequest(topic, courseTitle string) (Request, error) {
	if strings.TrimSpace(topic) == "" {
		return Request{}, fmt.Errorf("%s request: %w", ScopeModule, ErrEmptyPrompt)
	}
	prompt := topic
	if courseTitle != "" {
		prompt = fmt.Sprintf("create a descriptive module around the topic %s with reference to the course called %s", topic, courseTitle)
	}
	return newRequest(ScopeModule, prompt, moduleInstruction, moduleSchema())
}

func LessonRequest(title string) (Request, error) {
	return newRequest(ScopeLesson, title, lessonInstruction, lessonSchema("Content of the lesson"))
}

func LessonContentRequest(title string) (Request, error) {
	schema := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"content": str("Content of the lesson", false),
		},
		Required: []string{"content"},
	}
	return newRequest(ScopeLessonContent, title, contentInstruction, schema)
}

func OutcomesRequest(title string) (Request, error) {
	schema := &Schema{
		Type:  TypeArray,
		Items: str("Learning outcome of the lesson", false),
	}
	return newRequest(ScopeOutcomes, title, outcomesInstruction, schema)
}
