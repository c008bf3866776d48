package llm

import (
	"context"

	"microlearn/internal/domain"
)

// MockBundleGenerator returns fixed demo content. It is selected when no LLM
// provider is configured so the rest of the pipeline stays usable offline.
type MockBundleGenerator struct{}

func (MockBundleGenerator) Generate(_ context.Context, _ string) (*domain.GeneratedContent, error) {
	return &domain.GeneratedContent{
		Summary: "This is a demo summary of the provided content. Configure an LLM provider to generate a summary of your own material.",
		LearningObjectives: []string{
			"Understand the key concepts presented in the content",
			"Apply the knowledge to real-world scenarios",
			"Demonstrate comprehension through assessment activities",
		},
		Questions: []domain.GeneratedQuestion{
			{
				Question:    "What is the main topic discussed in this content?",
				Answer:      "The main topic is machine learning and its applications in artificial intelligence.",
				BloomLevel:  domain.BloomRemember,
				Explanation: "This question tests basic recall of the primary subject matter.",
				Options: []string{
					"The main topic is machine learning and its applications in artificial intelligence.",
					"The main topic is web development and programming languages.",
					"The main topic is database management systems.",
					"The main topic is network security protocols.",
				},
			},
			{
				Question:    "How does supervised learning differ from unsupervised learning?",
				Answer:      "Supervised learning uses labeled data to train models, while unsupervised learning works with unlabeled data to find patterns.",
				BloomLevel:  domain.BloomUnderstand,
				Explanation: "This question requires understanding and comparison of different concepts.",
				Options: []string{
					"Supervised learning uses labeled data to train models, while unsupervised learning works with unlabeled data to find patterns.",
					"Supervised learning is faster than unsupervised learning.",
					"Supervised learning requires more computational resources.",
					"Supervised learning only works with numerical data.",
				},
			},
			{
				Question:    "If you were building a spam detection system, which type of learning would you use and why?",
				Answer:      "Supervised learning would be used because we have labeled examples of spam and non-spam emails to train the model.",
				BloomLevel:  domain.BloomApply,
				Explanation: "This question requires applying knowledge to a new situation.",
				Options: []string{
					"Supervised learning would be used because we have labeled examples of spam and non-spam emails to train the model.",
					"Unsupervised learning would be used because it's more efficient.",
					"Reinforcement learning would be used because it adapts to new threats.",
					"Deep learning would be used because it's the most advanced method.",
				},
			},
		},
		Flashcards: []domain.Flashcard{
			{Front: "What is machine learning?", Back: "A subset of AI that enables computers to learn from experience without explicit programming.", Category: "definition"},
			{Front: "Name the three main types of machine learning", Back: "Supervised learning, unsupervised learning, and reinforcement learning.", Category: "key concept"},
			{Front: "What is the purpose of data preprocessing?", Back: "To clean and prepare raw data for analysis by removing errors and standardizing formats.", Category: "application"},
			{Front: "What is feature engineering?", Back: "The process of creating meaningful features from raw data to improve model performance.", Category: "definition"},
			{Front: "Give an example of a supervised learning application", Back: "Email spam detection, where the model learns from labeled examples of spam and legitimate emails.", Category: "example"},
		},
		KeyConcepts: []string{
			"Machine Learning",
			"Supervised Learning",
			"Unsupervised Learning",
			"Reinforcement Learning",
			"Data Preprocessing",
			"Feature Engineering",
			"Model Training",
		},
		DifficultyLevel: "intermediate",
	}, nil
}

var _ domain.BundleGenerator = MockBundleGenerator{}
